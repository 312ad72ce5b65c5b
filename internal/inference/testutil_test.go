package inference

import (
	"context"
)

// fakeClient records the payload it was invoked with and answers from its
// fields.
type fakeClient struct {
	payloadHolder
	result  Result
	err     error
	invoked int
	sent    Payload
}

func newFakeClient(result Result, err error) *fakeClient {
	return &fakeClient{
		payloadHolder: payloadHolder{payload: DefaultPayload(150, 0.9, 0.01)},
		result:        result,
		err:           err,
	}
}

func (f *fakeClient) Endpoint() string { return "fake-endpoint" }

func (f *fakeClient) Invoke(context.Context) (Result, error) {
	f.invoked++
	f.sent = f.payload.Clone()
	return f.result, f.err
}
