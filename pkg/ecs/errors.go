package ecs

import "errors"

// ErrResourceNotFound is returned by ReadResource/WriteResource when the
// requested resource type was never registered on the WorldBuilder.
var ErrResourceNotFound = errors.New("ecs: resource not found")

// ErrEntityNotFound is returned by lookups that promise an existing entity.
var ErrEntityNotFound = errors.New("ecs: entity not found")
