package database

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite" // pure Go driver

	"CouponScraper/internal/models"
)

// DBRepository wraps the sqlite snapshot of discovered categories and
// extracted coupons. The JSON artifacts remain the collaborator contract;
// the database keeps run history queryable.
type DBRepository struct {
	DB *sql.DB
}

// InitDB opens (or creates) the database and its tables.
func InitDB(filepath string) *DBRepository {
	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	if err = db.Ping(); err != nil {
		log.Fatalf("Error pinging database: %v", err)
	}

	createCategoriesTableSQL := `
	CREATE TABLE IF NOT EXISTS categories (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"title" TEXT,
		"url" TEXT,
		"category_path" TEXT UNIQUE,
		"level" INTEGER,
		"parent_category" TEXT,
		"parent_path" TEXT,
		"discovered_at" DATETIME
	);`
	if _, err = db.Exec(createCategoriesTableSQL); err != nil {
		log.Fatalf("Error creating categories table: %v", err)
	}

	createCouponsTableSQL := `
	CREATE TABLE IF NOT EXISTS coupons (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"brand" TEXT,
		"code" TEXT,
		"description" TEXT,
		"button_index" INTEGER,
		"category" TEXT,
		"category_url" TEXT,
		"category_path" TEXT,
		"level1" TEXT,
		"level2" TEXT,
		"level3" TEXT,
		"scraped_at" DATETIME,
		UNIQUE(category_path, button_index)
	);`
	if _, err = db.Exec(createCouponsTableSQL); err != nil {
		log.Fatalf("Error creating coupons table: %v", err)
	}

	log.Println("Database and tables initialized successfully.")
	return &DBRepository{DB: db}
}

// Close closes the database connection.
func (repo *DBRepository) Close() {
	repo.DB.Close()
}

// SaveCategory inserts or supersedes a category by its path. Re-discovery
// never deletes, it overwrites in place.
func (repo *DBRepository) SaveCategory(category models.Category) error {
	query := `
	INSERT INTO categories (title, url, category_path, level, parent_category, parent_path, discovered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(category_path) DO UPDATE SET
		title=excluded.title,
		url=excluded.url,
		level=excluded.level,
		parent_category=excluded.parent_category,
		parent_path=excluded.parent_path,
		discovered_at=excluded.discovered_at;
	`
	stmt, err := repo.DB.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		category.Title, category.URL, category.CategoryPath, category.Level,
		category.ParentCategory, category.ParentPath, time.Now(),
	)
	return err
}

// SaveCoupon inserts or refreshes a coupon by its (category_path,
// button_index) identity.
func (repo *DBRepository) SaveCoupon(coupon models.Coupon) error {
	query := `
	INSERT INTO coupons (brand, code, description, button_index, category, category_url, category_path, level1, level2, level3, scraped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(category_path, button_index) DO UPDATE SET
		brand=excluded.brand,
		code=excluded.code,
		description=excluded.description,
		scraped_at=excluded.scraped_at;
	`
	stmt, err := repo.DB.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var level3 sql.NullString
	if coupon.Level3 != nil {
		level3 = sql.NullString{String: *coupon.Level3, Valid: true}
	}

	_, err = stmt.Exec(
		coupon.Brand, coupon.Code, coupon.Description, coupon.ButtonIndex,
		coupon.Category, coupon.CategoryURL, coupon.CategoryPath,
		coupon.Level1, coupon.Level2, level3, time.Now(),
	)
	if err != nil {
		log.Printf("Failed to save coupon %s/%d: %v", coupon.CategoryPath, coupon.ButtonIndex, err)
	}
	return err
}

// GetAllCategories returns every stored category descriptor.
func (repo *DBRepository) GetAllCategories() ([]models.Category, error) {
	rows, err := repo.DB.Query(`
		SELECT title, url, category_path, level, parent_category, parent_path
		FROM categories
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Title, &c.URL, &c.CategoryPath, &c.Level, &c.ParentCategory, &c.ParentPath); err != nil {
			log.Printf("Error scanning category row: %v", err)
			continue
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountCoupons returns the number of stored coupons.
func (repo *DBRepository) CountCoupons() (int, error) {
	var n int
	err := repo.DB.QueryRow("SELECT COUNT(*) FROM coupons").Scan(&n)
	return n, err
}
