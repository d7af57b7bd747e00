package pipeline

import "github.com/ringcast/ringcast/pkg/logger"

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithName sets the processor name used in logs.
func WithName(name string) Option {
	return func(p *Processor) {
		if name != "" {
			p.name = name
		}
	}
}

// WithStamper sets the timestamp correlation stage.
func WithStamper(s Stamper) Option {
	return func(p *Processor) {
		p.stamper = s
	}
}

// WithHandler sets the recording orchestration stage.
func WithHandler(h Handler) Option {
	return func(p *Processor) {
		p.handler = h
	}
}

// WithPublisher sets the downstream delivery stage.
func WithPublisher(pub Publisher) Option {
	return func(p *Processor) {
		p.publisher = pub
	}
}

// WithLogger sets the logger used by the processor.
func WithLogger(log logger.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}
