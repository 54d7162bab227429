package room

import "time"

// Numeric knobs. The specification fixes these as compile-time constants
// rather than runtime configuration.
const (
	MaxRooms               = 100
	TimeoutSecs            = 8
	BotSleepSecs           = 1
	ComputeScoreDelaySecs  = 1
	DefaultHands           = 3
	BusCapacity            = 1024
)

const (
	timeoutDuration           = TimeoutSecs * time.Second
	botSleepDuration          = BotSleepSecs * time.Second
	computeScoreDelayDuration = ComputeScoreDelaySecs * time.Second
)
