package cronjobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"go-hazardwatch/store"
	"go-hazardwatch/uploads"
)

// orphanGrace keeps the sweep from deleting a blob written by an intake
// request whose report has not been persisted yet.
const orphanGrace = time.Hour

// SweepOrphanUploads removes image blobs no stored report references.
// They accumulate when intake fails after the photo was written.
func SweepOrphanUploads(st store.Store, up *uploads.Storage) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reports, err := st.List(ctx)
	if err != nil {
		log.Printf("orphan sweep: failed to list reports: %v", err)
		return
	}

	referenced := make(map[string]bool, len(reports))
	for _, r := range reports {
		if r.ImageRef != "" {
			referenced[r.ImageRef] = true
		}
	}

	removed, err := up.SweepOrphans(referenced, orphanGrace)
	if err != nil {
		log.Printf("orphan sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("orphan sweep removed %d unreferenced uploads", removed)
	}
}

func InitCronJobs(st store.Store, up *uploads.Storage) {
	log.Println("Starting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Orphan upload sweep: hourly
	_, err := c.AddFunc("0 * * * *", func() {
		log.Println("CronJob: orphan upload sweep running")
		SweepOrphanUploads(st, up)
	})
	if err != nil {
		log.Println("Error scheduling orphan upload sweep:", err)
	}

	c.Start()
}
