package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/utils"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Creates the schema and optionally loads reference data from CSV files
// (users.csv, jobsites.csv, costcodes.csv, equipment.csv) in -data.
func main() {
	dataDir := flag.String("data", "", "directory with reference CSV files")
	flag.Parse()

	dsn := os.Getenv("DSN")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatal(err)
	}

	models := []interface{}{
		&model.User{},
		&model.Jobsite{},
		&model.CostCode{},
		&model.Equipment{},
		&model.Timesheet{},
		&model.EmployeeEquipmentLog{},
		&model.TascoLog{},
		&model.TascoFLoad{},
		&model.TruckingLog{},
		&model.Material{},
		&model.EquipmentHauled{},
		&model.StateMileage{},
		&model.RefuelLog{},
		&model.AuditEntry{},
	}

	for _, m := range models {
		if !db.Migrator().HasTable(m) {
			if err := db.Migrator().CreateTable(m); err != nil {
				log.Fatalf("failed to create table for %T: %v", m, err)
			}
		}
	}

	if *dataDir == "" {
		return
	}

	seedUsers(db, filepath.Join(*dataDir, "users.csv"))
	seedJobsites(db, filepath.Join(*dataDir, "jobsites.csv"))
	seedCostCodes(db, filepath.Join(*dataDir, "costcodes.csv"))
	seedEquipment(db, filepath.Join(*dataDir, "equipment.csv"))
}

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("skipping %s: %v", path, err)
		return nil
	}
	defer f.Close()

	records, err := utils.ParseCSV(f)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}
	if len(records) < 2 {
		return nil
	}
	// drop the header row
	return records[1:]
}

func upsert(db *gorm.DB, rows interface{}) {
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rows).Error; err != nil {
		log.Fatal(err)
	}
}

// firstName,lastName,email,permission
func seedUsers(db *gorm.DB, path string) {
	var users []model.User
	for _, rec := range readCSV(path) {
		if len(rec) < 4 {
			continue
		}
		email := rec[2]
		users = append(users, model.User{
			ID:         uuid.NewString(),
			FirstName:  rec[0],
			LastName:   rec[1],
			Email:      &email,
			Permission: rec[3],
		})
	}
	if len(users) > 0 {
		upsert(db, users)
	}
}

// qrCode,name,description
func seedJobsites(db *gorm.DB, path string) {
	var jobsites []model.Jobsite
	for _, rec := range readCSV(path) {
		if len(rec) < 3 {
			continue
		}
		jobsites = append(jobsites, model.Jobsite{
			ID:          uuid.NewString(),
			QRCode:      rec[0],
			Name:        rec[1],
			Description: rec[2],
			IsActive:    true,
		})
	}
	if len(jobsites) > 0 {
		upsert(db, jobsites)
	}
}

// code,name
func seedCostCodes(db *gorm.DB, path string) {
	var costCodes []model.CostCode
	for _, rec := range readCSV(path) {
		if len(rec) < 2 {
			continue
		}
		costCodes = append(costCodes, model.CostCode{
			ID:       uuid.NewString(),
			Code:     rec[0],
			Name:     rec[1],
			IsActive: true,
		})
	}
	if len(costCodes) > 0 {
		upsert(db, costCodes)
	}
}

// qrCode,name
func seedEquipment(db *gorm.DB, path string) {
	var equipment []model.Equipment
	for _, rec := range readCSV(path) {
		if len(rec) < 2 {
			continue
		}
		equipment = append(equipment, model.Equipment{
			ID:     uuid.NewString(),
			QRCode: rec[0],
			Name:   rec[1],
			Status: "OPERATIONAL",
		})
	}
	if len(equipment) > 0 {
		upsert(db, equipment)
	}
}
