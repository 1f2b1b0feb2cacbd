// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"log/slog"
	"os"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/engines"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Option configures reading and header construction.
type Option func(*options)

type options struct {
	resolver registry.Resolver
	logger   *slog.Logger
	progress ProgressSink

	// remap is nil when the policy is detected from the class id.
	remap *classid.Policy
}

// WithRegistry resolves classes and chunks through resolver instead of
// the built-in catalogue.
func WithRegistry(resolver registry.Resolver) Option {
	return func(o *options) { o.resolver = resolver }
}

// WithLogger sends diagnostics to logger. The default logs errors
// only, to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProgress reports read progress to sink.
func WithProgress(sink ProgressSink) Option {
	return func(o *options) { o.progress = sink }
}

// WithRemap fixes the identifier policy the input was written under.
// Without it the policy is detected from the container class id.
func WithRemap(policy classid.Policy) Option {
	return func(o *options) { o.remap = &policy }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = engines.Registry()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	return o
}

// policyFor returns the read policy for a raw container class id.
func (o *options) policyFor(raw classid.ID) classid.Policy {
	if o.remap != nil {
		return *o.remap
	}
	return classid.DetectPolicy(raw, func(id classid.ID) bool {
		_, ok := o.resolver.Node(id)
		return ok
	})
}
