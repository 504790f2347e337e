package domain

import "time"

type TaskID string
type CycleID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type Timestamp = time.Time
