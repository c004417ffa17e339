package main

import (
	"context"
	"log"
	"os"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/core"
	tscore "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/utils"
)

// Inserts a handful of timesheets in various lifecycle states against the
// database in DSN. Ids must already exist in the reference tables (see
// cmd/seed).
func main() {
	utils.InitLogger("inserttestdata")

	ctx := context.Background()
	dm, err := core.New(os.Getenv("DSN"), 2)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	db, err := dm.GetDB(ctx)
	if err != nil {
		log.Fatal(err)
	}

	repo := tscore.NewGormRepository(db)
	svc := tscore.NewService(repo, repo, tscore.NewDiffer(repo), nil, tscore.SystemClock(), repo, utils.Logger)

	userID := envOr("TEST_USER_ID", "user-1")
	jobsiteID := envOr("TEST_JOBSITE_ID", "site-1")
	costCodeID := envOr("TEST_COST_CODE_ID", "cc-1")

	start, err := utils.ParseISOTime("2025-06-02T07:00:00Z")
	if err != nil {
		log.Fatal(err)
	}

	// open labor draft
	if _, err := svc.CreateTimesheet(ctx, tscore.CreateTimesheetInput{
		Date:       utils.MustParseDate("2025-06-02"),
		UserID:     userID,
		JobsiteID:  jobsiteID,
		CostCodeID: costCodeID,
		WorkType:   model.WorkTypeLabor,
		StartTime:  *start,
		Comment:    "test data: open labor shift",
	}); err != nil {
		log.Fatal(err)
	}

	// completed truck-driver shift, submitted for review
	truck, err := svc.CreateTimesheet(ctx, tscore.CreateTimesheetInput{
		Date:            utils.MustParseDate("2025-06-02"),
		UserID:          userID,
		JobsiteID:       jobsiteID,
		CostCodeID:      costCodeID,
		WorkType:        model.WorkTypeTruckDriver,
		StartTime:       *start,
		TruckID:         envOr("TEST_TRUCK_ID", "truck-1"),
		StartingMileage: utils.Ptr(int32(120400)),
	})
	if err != nil {
		log.Fatal(err)
	}

	end, err := utils.ParseISOTime("2025-06-02T15:30:00Z")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := svc.ClockOut(ctx, truck.ID, tscore.ClockOutInput{
		EndTime: *end,
		Comment: "test data: full trucking shift",
	}); err != nil {
		log.Fatal(err)
	}

	utils.Logger.Info("test data inserted")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
