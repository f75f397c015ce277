package cell

import "github.com/zoobzio/capitan"

// Cell lifecycle signals.
var (
	// CellValueChanged is emitted when Set or Update assigns a new value.
	CellValueChanged = capitan.NewSignal(
		"cell.value.changed",
		"Cell value assigned",
	)

	// CellReverted is emitted when a cell's value is rolled back to a
	// history entry.
	CellReverted = capitan.NewSignal(
		"cell.reverted",
		"Cell value reverted to a history entry",
	)

	// CellDisposed is emitted when a cell is disposed.
	CellDisposed = capitan.NewSignal(
		"cell.disposed",
		"Cell disposed",
	)
)

// Persistence signals.
var (
	// SaveCompleted is emitted when a value reaches the cache, queue, or store.
	SaveCompleted = capitan.NewSignal(
		"cell.persist.save.completed",
		"Cell value saved",
	)

	// SaveFailed is emitted when a save cannot serialize or write a value.
	SaveFailed = capitan.NewSignal(
		"cell.persist.save.failed",
		"Cell save failed",
	)

	// LoadCompleted is emitted when a loaded value is assigned to a cell.
	LoadCompleted = capitan.NewSignal(
		"cell.persist.load.completed",
		"Cell value loaded",
	)

	// LoadFailed is emitted when a load cannot read or decode a value.
	LoadFailed = capitan.NewSignal(
		"cell.persist.load.failed",
		"Cell load failed",
	)

	// LoadDefaulted is emitted when nothing was found for a key and the
	// caller's default value was applied instead.
	LoadDefaulted = capitan.NewSignal(
		"cell.persist.load.defaulted",
		"Default value applied for missing key",
	)
)

// Write queue signals.
var (
	// QueueEnqueued is emitted when a batched write is staged on the queue.
	QueueEnqueued = capitan.NewSignal(
		"cell.queue.enqueued",
		"Durable write staged on the queue",
	)

	// QueueDrainStarted is emitted when a drain loop begins.
	QueueDrainStarted = capitan.NewSignal(
		"cell.queue.drain.started",
		"Write queue drain started",
	)

	// QueueDrainCompleted is emitted when a drain loop empties the queue.
	QueueDrainCompleted = capitan.NewSignal(
		"cell.queue.drain.completed",
		"Write queue drained",
	)

	// QueueWriteFailed is emitted when a durable write fails during a drain.
	// The failed entry stays at the head of the queue for the next trigger.
	QueueWriteFailed = capitan.NewSignal(
		"cell.queue.write.failed",
		"Durable write failed, drain aborted",
	)
)

// Follow signals.
var (
	// FollowStarted is emitted when a cell begins following a watcher.
	FollowStarted = capitan.NewSignal(
		"cell.follow.started",
		"Cell following a watched source",
	)

	// FollowStopped is emitted when a follow loop ends.
	FollowStopped = capitan.NewSignal(
		"cell.follow.stopped",
		"Cell follow stopped",
	)

	// FollowRejected is emitted when a watched value fails to decode or
	// validate and is discarded.
	FollowRejected = capitan.NewSignal(
		"cell.follow.rejected",
		"Watched value rejected",
	)
)
