package event

import (
	"context"
	"log"
	"time"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait during shutdown so in-flight
// async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine so the caller is not blocked. Use from
// request handlers for fire-and-forget events; errors are logged.
//
// emitter may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine uses context.Background with emitTimeout so request
// cancellation does not abort an in-flight emit.
func EmitAsync(emitter Emitter, e Event) {
	if emitter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, e); err != nil {
			log.Printf("event: async emit failed: %v", err)
		}
	}()
}
