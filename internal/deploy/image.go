package deploy

import (
	"context"
	"fmt"
	"strings"
)

// ImageResolver supplies the container image that serves the model.
type ImageResolver interface {
	ImageURI(ctx context.Context) (string, error)
}

// StaticImage is an explicitly configured image URI.
type StaticImage string

func (s StaticImage) ImageURI(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrConfiguration("image_uri", "required")
	}
	return string(s), nil
}

const (
	dlcRepository     = "huggingface-pytorch-tgi-inference"
	defaultDLCAccount = "763104351884"
)

// dlcTags maps a TGI release to the tag of its published deep learning
// container.
var dlcTags = map[string]string{
	"2.3.1": "2.4.0-tgi2.3.1-gpu-py311-cu124-ubuntu22.04",
	"2.2.0": "2.3.0-tgi2.2.0-gpu-py310-cu121-ubuntu22.04",
	"2.0.0": "2.1.1-tgi2.0.0-gpu-py310-cu121-ubuntu22.04",
	"1.4.2": "2.1.1-tgi1.4.2-gpu-py310-cu121-ubuntu22.04",
}

// dlcAccounts lists the regions whose registry is not hosted in the
// default account.
var dlcAccounts = map[string]string{
	"af-south-1":     "626614931356",
	"ap-east-1":      "871362719292",
	"ap-southeast-3": "907027046896",
	"eu-south-1":     "692866216735",
	"me-south-1":     "217643126080",
	"me-central-1":   "914824155844",
	"il-central-1":   "780543022126",
	"cn-north-1":     "727897471807",
	"cn-northwest-1": "727897471807",
}

// TGIImageResolver resolves the Hugging Face TGI deep learning container for
// a region and TGI release.
type TGIImageResolver struct {
	Region  string
	Version string
}

func (r TGIImageResolver) ImageURI(context.Context) (string, error) {
	if r.Region == "" {
		return "", ErrConfiguration("region", "required to resolve the serving image")
	}
	tag, ok := dlcTags[r.Version]
	if !ok {
		return "", ErrConfiguration("tgi_version", fmt.Sprintf("unsupported TGI version %q", r.Version))
	}
	account := defaultDLCAccount
	if a, ok := dlcAccounts[r.Region]; ok {
		account = a
	}
	domain := "amazonaws.com"
	if strings.HasPrefix(r.Region, "cn-") {
		domain = "amazonaws.com.cn"
	}
	return fmt.Sprintf("%s.dkr.ecr.%s.%s/%s:%s", account, r.Region, domain, dlcRepository, tag), nil
}

// ImageResolverFor picks the explicit image when one is configured and the
// TGI container otherwise.
func ImageResolverFor(imageURI, region, tgiVersion string) ImageResolver {
	if strings.TrimSpace(imageURI) != "" {
		return StaticImage(imageURI)
	}
	return TGIImageResolver{Region: region, Version: tgiVersion}
}
