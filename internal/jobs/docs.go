// Package jobs provides scheduled background tasks for the afterlife service.
//
// # Available Jobs
//
// JourneySimulator advances every order that has not reached its new beginning by one
// delivery stage per tick, writing canned progress (50, 85, 100) and a history message
// through the order store. It is off unless DEMO_JOURNEY_SCHEDULE is set:
//
//	sim := jobs.NewJourneySimulator(store, "*/30 * * * * *", registry)
//	if err := sim.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer sim.Stop()
//
// Schedules use the six-field cron syntax with seconds, or descriptors such as "@every 1m".
package jobs
