package graph

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// LoggerCallback logs graph and node lifecycle events.
type LoggerCallback struct {
	callbacks.HandlerBuilder

	Logger zerolog.Logger
}

func NewLoggerCallback(log zerolog.Logger) *LoggerCallback {
	return &LoggerCallback{Logger: log}
}

func (cb *LoggerCallback) event(info *callbacks.RunInfo) *zerolog.Event {
	ev := cb.Logger.Debug()
	if info != nil {
		ev = ev.Str("node", info.Name).Str("component", string(info.Component)).Str("type", info.Type)
	}
	return ev
}

func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	cb.event(info).Msg("node start")
	return ctx
}

func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	cb.event(info).Msg("node end")
	return ctx
}

func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	l := cb.Logger.Error().Err(err)
	if info != nil {
		l = l.Str("node", info.Name)
	}
	l.Msg("node error")
	return ctx
}

func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}
