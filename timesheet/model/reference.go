package model

import "time"

type User struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	FirstName   string     `gorm:"column:first_name;type:varchar(50)" json:"firstName"`
	LastName    string     `gorm:"column:last_name;type:varchar(50)" json:"lastName"`
	Email       *string    `gorm:"column:email;type:varchar(255);index" json:"email"`
	Permission  string     `gorm:"column:permission;type:varchar(20);not null;default:USER" json:"permission"`
	TerminationDate *time.Time `gorm:"column:termination_date;null" json:"terminationDate"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Jobsite struct {
	ID          string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	QRCode      string `gorm:"column:qr_code;type:varchar(100);uniqueIndex" json:"qrCode"`
	Name        string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (Jobsite) TableName() string {
	return "jobsites"
}

type CostCode struct {
	ID       string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Code     string `gorm:"column:code;type:varchar(30);uniqueIndex;not null" json:"code"`
	Name     string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (CostCode) TableName() string {
	return "cost_codes"
}

type Equipment struct {
	ID     string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	QRCode string `gorm:"column:qr_code;type:varchar(100);uniqueIndex" json:"qrCode"`
	Name   string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Status string `gorm:"column:status;type:varchar(30);not null;default:OPERATIONAL" json:"status"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (Equipment) TableName() string {
	return "equipment"
}
