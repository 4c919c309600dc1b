package ingest

import (
	"context"
	"errors"

	"estatecore/internal/dispatcher"
	"estatecore/internal/normalizer"
	"estatecore/internal/rules"

	"go.uber.org/zap"
)

// Pipeline is the ingestion path: normalize, evaluate, dispatch. Each
// inbound message is processed to completion before the handler returns;
// faults are recovered here and never travel back to the broker.
type Pipeline struct {
	normalizer *normalizer.Normalizer
	engine     *rules.Engine
	dispatcher *dispatcher.Dispatcher
	log        *zap.Logger
}

func NewPipeline(n *normalizer.Normalizer, e *rules.Engine, d *dispatcher.Dispatcher, log *zap.Logger) *Pipeline {
	return &Pipeline{normalizer: n, engine: e, dispatcher: d, log: log}
}

// HandleMessage is the gateway handler for telemetry/event topics.
func (p *Pipeline) HandleMessage(topic string, payload []byte) {
	event, err := p.normalizer.Normalize(topic, payload)
	if err != nil {
		if !errors.Is(err, normalizer.ErrInvalidEvent) {
			p.log.Warn("normalize failed", zap.String("topic", topic), zap.Error(err))
		}
		return
	}

	decision := p.engine.Evaluate(event)
	if decision == nil {
		return
	}

	if err := p.dispatcher.Dispatch(context.Background(), event, decision); err != nil {
		p.log.Error("dispatch failed",
			zap.String("device_id", event.DeviceID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}
