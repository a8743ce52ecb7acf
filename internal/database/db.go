package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"whatstoeat/internal/catalog"
	"whatstoeat/internal/models"
)

// IntSlice represents a slice of ints that can be stored in the database
type IntSlice []int

// Value converts the slice to a JSON string for storage
func (s IntSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan converts the database value back to a slice
func (s *IntSlice) Scan(value interface{}) error {
	if value == nil {
		*s = IntSlice{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for IntSlice")
	}
}

// MealRecord is the persisted form of a meal.
type MealRecord struct {
	gorm.Model
	MealID   string `gorm:"column:meal_id;unique_index"`
	Name     string
	Price    float64
	Calories int
	Diet     string
	Flavor   string
	Ratings  IntSlice `gorm:"type:text"`
}

// TableName sets the table name for MealRecord
func (MealRecord) TableName() string {
	return "meals"
}

func recordFromMeal(m *models.Meal) *MealRecord {
	return &MealRecord{
		MealID:   m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Calories: m.Calories,
		Diet:     m.Diet,
		Flavor:   m.Flavor,
		Ratings:  IntSlice(m.Ratings),
	}
}

func (r *MealRecord) toMeal() *models.Meal {
	return &models.Meal{
		ID:       r.MealID,
		Name:     r.Name,
		Price:    r.Price,
		Calories: r.Calories,
		Diet:     r.Diet,
		Flavor:   r.Flavor,
		Ratings:  []int(r.Ratings),
	}
}

// Store is a SQLite-backed meal store.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at dbPath and migrates the schema.
func Open(dbPath string) (*Store, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MealRecord{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMeal inserts or updates a single meal by its meal id.
func (s *Store) SaveMeal(m *models.Meal) error {
	var existing MealRecord
	err := s.db.Where("meal_id = ?", m.ID).First(&existing).Error
	if gorm.IsRecordNotFoundError(err) {
		return s.db.Create(recordFromMeal(m)).Error
	}
	if err != nil {
		return err
	}
	record := recordFromMeal(m)
	record.Model = existing.Model
	return s.db.Save(record).Error
}

// DeleteMeal removes a meal by its meal id. Deletes are hard so the
// unique index on meal_id never collides with a soft-deleted row.
func (s *Store) DeleteMeal(id string) error {
	return s.db.Unscoped().Where("meal_id = ?", id).Delete(&MealRecord{}).Error
}

// SaveCatalog replaces the stored menu with the catalog's current meals.
func (s *Store) SaveCatalog(c *catalog.Catalog) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Unscoped().Delete(&MealRecord{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for _, m := range c.Meals() {
		if err := tx.Create(recordFromMeal(m)).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// LoadCatalog builds a catalog from the stored meals, in insertion order.
func (s *Store) LoadCatalog() (*catalog.Catalog, error) {
	var records []MealRecord
	if err := s.db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	meals := make([]*models.Meal, len(records))
	for i := range records {
		meals[i] = records[i].toMeal()
	}
	return catalog.NewFromMeals(meals)
}
