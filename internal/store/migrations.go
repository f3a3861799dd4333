package store

import "fmt"

// migrate runs all database migrations
func (s *Store) migrate() error {
	migrations := []string{
		migrationCreateCompanies,
		migrationCreateUsers,
		migrationCreateClients,
		migrationCreateProjects,
		migrationCreateTasks,
		migrationCreateEvents,
		migrationCreateMembers,
		migrationCreatePendingUploads,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateCompanies = `
CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id TEXT,
    task_types TEXT,
    created_at TEXT NOT NULL
);
`

const migrationCreateUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    role TEXT,
    avatar_url TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_company ON users(company_id);
`

const migrationCreateClients = `
CREATE TABLE IF NOT EXISTS clients (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    address TEXT,
    created_at TEXT NOT NULL
);
`

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    notes TEXT NOT NULL DEFAULT '',
    client_id TEXT,
    event_id TEXT,
    start_date TEXT,
    end_date TEXT,
    team_member_ids TEXT NOT NULL DEFAULT '',
    image_urls TEXT NOT NULL DEFAULT '',
    needs_sync INTEGER NOT NULL DEFAULT 0,
    sync_priority INTEGER NOT NULL DEFAULT 5,
    last_synced_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_company ON projects(company_id);
CREATE INDEX IF NOT EXISTS idx_projects_dirty ON projects(needs_sync, sync_priority);
`

const migrationCreateTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    task_type TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    notes TEXT NOT NULL DEFAULT '',
    event_id TEXT,
    team_member_ids TEXT NOT NULL DEFAULT '',
    image_urls TEXT NOT NULL DEFAULT '',
    needs_sync INTEGER NOT NULL DEFAULT 0,
    sync_priority INTEGER NOT NULL DEFAULT 5,
    last_synced_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON UPDATE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_dirty ON tasks(needs_sync, sync_priority);
`

const migrationCreateEvents = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    project_id TEXT,
    task_id TEXT,
    title TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '#4ECDC4',
    start_date TEXT,
    end_date TEXT,
    duration INTEGER NOT NULL DEFAULT 0,
    team_member_ids TEXT NOT NULL DEFAULT '',
    needs_sync INTEGER NOT NULL DEFAULT 0,
    sync_priority INTEGER NOT NULL DEFAULT 5,
    last_synced_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_task ON events(task_id);
CREATE INDEX IF NOT EXISTS idx_events_project ON events(project_id);
CREATE INDEX IF NOT EXISTS idx_events_dirty ON events(needs_sync, sync_priority);
`

const migrationCreateMembers = `
CREATE TABLE IF NOT EXISTS project_members (
    project_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS task_members (
    task_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS event_members (
    event_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (event_id, user_id)
);
`

const migrationCreatePendingUploads = `
CREATE TABLE IF NOT EXISTS pending_uploads (
    id TEXT PRIMARY KEY,
    owner_type TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    local_path TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    attempts INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
`
