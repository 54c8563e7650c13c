// Package lifecycle holds process-wide lifecycle settings shared by deliveries and infra.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of servers and publishers.
const DefaultTimeout = 10 * time.Second
