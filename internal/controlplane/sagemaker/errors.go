package sagemaker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"

	"endpointd/internal/controlplane"
)

// isNotFound reports whether err is SageMaker's answer for a missing
// resource. Describe and Delete calls report absence as a ValidationException
// whose message starts with "Could not find"; newer operations use
// ResourceNotFound.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var rnf *types.ResourceNotFound
	if errors.As(err, &rnf) {
		return true
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ResourceNotFound", "ResourceNotFoundException":
		return true
	case "ValidationException":
		msg := strings.ToLower(apiErr.ErrorMessage())
		return strings.Contains(msg, "could not find") || strings.Contains(msg, "does not exist")
	}
	return false
}

// classify converts absence answers into controlplane.ErrNotFound and
// annotates everything else with the resource it concerned.
func classify(kind controlplane.ResourceKind, name string, err error) error {
	if isNotFound(err) {
		return controlplane.NotFound(kind, name, err)
	}
	return fmt.Errorf("%s %q: %w", kind, name, err)
}
