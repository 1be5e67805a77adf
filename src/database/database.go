package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/linkpulse/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	// sqlite serializes writes anyway; one connection keeps in-memory
	// databases coherent and avoids SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTransactionsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS publishers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		token TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY,
		publisher_id INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		application_status TEXT NOT NULL DEFAULT 'NOT_APPLIED',
		cross_device TEXT NOT NULL DEFAULT 'NO',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(publisher_id) REFERENCES publishers(id)
	);

	CREATE TABLE IF NOT EXISTS commission_rules (
		id INTEGER PRIMARY KEY,
		campaign_id INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT 'PERCENTAGE',
		ratio TEXT,
		commission TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(campaign_id) REFERENCES campaigns(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY,
		publisher_id INTEGER NOT NULL,
		campaign_id INTEGER,
		order_id TEXT NOT NULL DEFAULT '',
		order_time TEXT NOT NULL DEFAULT '',
		total_price TEXT NOT NULL DEFAULT '0',
		commission TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'CNY',
		order_status TEXT NOT NULL DEFAULT 'PENDING',
		balance_time TEXT,
		user_id INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(publisher_id) REFERENCES publishers(id),
		FOREIGN KEY(campaign_id) REFERENCES campaigns(id)
	);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY,
		publisher_id INTEGER NOT NULL,
		campaign_id INTEGER,
		month TEXT NOT NULL DEFAULT '',
		total_price TEXT NOT NULL DEFAULT '0',
		commission TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'CNY',
		order_status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(publisher_id) REFERENCES publishers(id),
		FOREIGN KEY(campaign_id) REFERENCES campaigns(id)
	);

	CREATE TABLE IF NOT EXISTS promotion_campaigns (
		id INTEGER PRIMARY KEY,
		publisher_id INTEGER NOT NULL,
		campaign_id INTEGER,
		name TEXT NOT NULL DEFAULT '',
		promotion_type TEXT NOT NULL DEFAULT 'DISCOUNT',
		coupon_code TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(publisher_id) REFERENCES publishers(id),
		FOREIGN KEY(campaign_id) REFERENCES campaigns(id)
	);

	CREATE TABLE IF NOT EXISTS attribution_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag TEXT NOT NULL UNIQUE,
		publisher_id INTEGER NOT NULL,
		campaign_id INTEGER,
		user_id INTEGER,
		click_time TIMESTAMP NOT NULL,
		expire_time TIMESTAMP,
		user_ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		referrer_url TEXT NOT NULL DEFAULT '',
		context_data TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(publisher_id) REFERENCES publishers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_attribution_tags_expire_time ON attribution_tags(expire_time);
	CREATE INDEX IF NOT EXISTS idx_transactions_publisher ON transactions(publisher_id);
	CREATE INDEX IF NOT EXISTS idx_settlements_publisher ON settlements(publisher_id);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

func migrateTransactionsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='transactions'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'transactions' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'transactions' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'transactions' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'transactions' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(transactions)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'transactions': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'transactions'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'transactions': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'transactions'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'transactions': %v", err)
		}
		return
	}

	if _, ok := columnExists["balance_time"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN balance_time TEXT")
		if err != nil {
			logger.L.Error("Error adding 'balance_time' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'balance_time' column to 'transactions' table")
		}
	}

	if _, ok := columnExists["user_id"]; !ok {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN user_id INTEGER")
		if err != nil {
			logger.L.Error("Error adding 'user_id' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'user_id' column to 'transactions' table")
		}
	}
}
