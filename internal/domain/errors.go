package domain

import "errors"

var (
	// ErrCatalogLoad is returned when the product catalog cannot be read or parsed
	ErrCatalogLoad = errors.New("failed to load product catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamFailure is returned when a hosted model (chat or embeddings) request fails
	ErrUpstreamFailure = errors.New("upstream model request failed")

	// ErrIndexUnavailable is returned when the retrieval index cannot be queried
	ErrIndexUnavailable = errors.New("retrieval index unavailable")

	// ErrTranscriptionFailed is returned when the speech model request fails
	ErrTranscriptionFailed = errors.New("transcription request failed")

	// ErrInvalidModelOutput is returned when the language model breaks the JSON contract
	ErrInvalidModelOutput = errors.New("model output is not a valid action object")

	// ErrUnsupportedAudio is returned when an upload is not an audio file
	ErrUnsupportedAudio = errors.New("file must be an audio file")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
