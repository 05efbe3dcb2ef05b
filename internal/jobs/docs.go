// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3 with second-resolution schedules.
//
// # Available Jobs
//
// AutoCompleteOrdersJob finds Delivered orders whose payment is Paid and moves
// them to Completed through the batch status handler, acting as the
// configured system operator. Every transition it makes goes through the same
// validation, permission and audit path as an operator request.
//
// # Usage
//
//	job, err := jobs.NewAutoCompleteOrdersJob(completableHandler, batchHandler,
//		systemOperator, 100, "0 * * * * *", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	jobManager := jobs.NewJobManager(job)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Query and batch errors are logged and the run ends; the next tick retries.
// Per-order failures are part of the batch result and are only counted.
package jobs
