package openpose

import "errors"

var (
	// ErrMalformedTensor is returned when the tensor handed to the pipeline
	// does not have the shape of the MPI body model output
	ErrMalformedTensor = errors.New("malformed tensor")
	// ErrInferenceUnavailable is returned when the inference collaborator
	// failed or produced no tensor
	ErrInferenceUnavailable = errors.New("inference unavailable")
	// ErrInvalidParams is returned when pipeline parameters are out of range
	ErrInvalidParams = errors.New("invalid params")
)
