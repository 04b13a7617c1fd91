// Command reminder is the terminal client of the task reminder store.
//
// Usage:
//
//	reminder                      # interactive session (same as "reminder watch")
//	reminder list                 # print active reminders
//	reminder add "Pay bills" finance 2025-01-10 --time 09:00 --priority high
//	reminder complete 3
//	reminder note add "buy stamps"
//	reminder --help
//
// Configuration is read from ~/.task-reminder/config.yaml and TASK_REMINDER_*
// environment variables.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
