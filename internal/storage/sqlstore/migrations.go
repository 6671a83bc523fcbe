package sqlstore

// schema creates the tables if they do not exist. It is valid for both
// SQLite and PostgreSQL. Amounts are stored as decimal strings and dates as
// YYYY-MM-DD strings, so ordering and range filters are text comparisons.
// IMPORTANT: companies must be created before the tables that reference it.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    country TEXT,
    currency TEXT,
    opening_balance TEXT NOT NULL DEFAULT '0',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    phone TEXT UNIQUE,
    password_hash TEXT NOT NULL,
    company_id TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
    created_at BIGINT NOT NULL,
    FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS incomes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    notes TEXT,
    company_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    notes TEXT,
    company_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_users_company_id ON users(company_id);
CREATE INDEX IF NOT EXISTS idx_incomes_company_date ON incomes(company_id, date);
CREATE INDEX IF NOT EXISTS idx_expenses_company_date ON expenses(company_id, date);
`
