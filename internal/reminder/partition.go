package reminder

// Partition splits reminders into pending and completed ones, keeping the
// store's order in both.
func Partition(all []Reminder) (active, completed []Reminder) {
	for _, r := range all {
		if r.Completed {
			completed = append(completed, r)
		} else {
			active = append(active, r)
		}
	}
	return active, completed
}
