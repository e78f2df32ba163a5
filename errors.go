package mirage

import "errors"

// ErrEmptyDraft is returned when a post or comment draft has no content. The
// draft is rejected before any state changes.
var ErrEmptyDraft = errors.New("mirage: empty draft")

// ErrUnknownPost is returned when an operation names a post id that is not in
// the feed.
var ErrUnknownPost = errors.New("mirage: unknown post")

// ErrUnknownCharacter is returned when an operation names a character id the
// directory does not resolve.
var ErrUnknownCharacter = errors.New("mirage: unknown character")

// ErrEngineClosed is returned by operations invoked after Close.
var ErrEngineClosed = errors.New("mirage: engine closed")
