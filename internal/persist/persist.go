// Package persist is the Persistence Layer (spec §4.9, §6): it durably
// stores one project's call graph under a per-project cache directory and
// reloads it on the next run. Small projects get a human-readable JSON
// dump; projects past the size threshold get the SQLite encoding instead,
// mirroring the teacher's store.go (which is SQLite-only) generalized to
// spec §4.9's explicit dual-format requirement.
package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"

	"github.com/codegraphio/codegraph/pkg/model"
)

// SchemaVersion is bumped whenever Snapshot's shape changes incompatibly.
// Load refuses to read a cache written by a different version rather than
// guess at a migration (spec §4.9's "reject, don't best-effort-upgrade").
const SchemaVersion = 1

// SQLiteThreshold is the function count past which Save switches from the
// JSON encoding to SQLite (spec §4.9: "> 50k functions").
const SQLiteThreshold = 50_000

// Snapshot is the full serializable state of one project's call graph.
type Snapshot struct {
	SchemaVersion int                      `json:"schema_version"`
	ProjectID     string                   `json:"project_id"`
	ProjectRoot   string                   `json:"project_root"`
	Functions     []*model.Fn              `json:"functions"`
	Types         []*model.TypeDecl        `json:"types"`
	Edges         []*model.Edge            `json:"edges"`
	Files         map[string]*model.FileMeta `json:"files"`
}

// ProjectDir returns the per-project cache directory,
// "<projectRoot>/.codegraph_cache/<project_id>".
func ProjectDir(projectRoot, projectID string) string {
	return filepath.Join(projectRoot, ".codegraph_cache", projectID)
}

// Format names which on-disk encoding a Save/Load call used.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// HumanEncoding picks which encoding Save uses for the below-threshold,
// human-readable tier. Defaults to JSON; a caller that wants the
// graph committed to source control for diffing (spec §4.9 mentions both
// as acceptable human-readable encodings) can set this to FormatYAML.
var HumanEncoding = FormatJSON

// ChooseFormat applies spec §4.9's size threshold.
func ChooseFormat(functionCount int) Format {
	if functionCount > SQLiteThreshold {
		return FormatSQLite
	}
	return FormatJSON
}

// Save writes snapshot to dir using the format its function count implies
// and updates the project registry. The JSON/YAML graph, file_hashes.json
// and projects.json are written atomically (temp file + rename); the
// SQLite graph is removed and rewritten in place inside one transaction.
func Save(dir string, snapshot *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: create cache dir: %w", err)
	}
	snapshot.SchemaVersion = SchemaVersion

	format := ChooseFormat(len(snapshot.Functions))
	switch format {
	case FormatSQLite:
		if err := saveSQLite(filepath.Join(dir, "graph.sqlite"), snapshot); err != nil {
			return err
		}
	default:
		// A graph.sqlite from an earlier, larger save would shadow this one on Load.
		_ = os.Remove(filepath.Join(dir, "graph.sqlite"))
		if HumanEncoding == FormatYAML {
			if err := saveYAML(filepath.Join(dir, "graph.yaml"), snapshot); err != nil {
				return err
			}
		} else {
			if err := saveJSON(filepath.Join(dir, "graph.json"), snapshot); err != nil {
				return err
			}
		}
	}

	fileHashes := map[string]*model.FileMeta{}
	for path, meta := range snapshot.Files {
		fileHashes[path] = meta
	}
	if err := saveJSON(filepath.Join(dir, "file_hashes.json"), fileHashes); err != nil {
		return err
	}

	return touchRegistry(filepath.Dir(dir), snapshot.ProjectID, snapshot.ProjectRoot)
}

// Load reads whichever encoding is present under dir, preferring SQLite
// if both exist (it is only ever written once JSON's threshold is
// crossed, so its presence means it is authoritative).
func Load(dir string) (*Snapshot, error) {
	sqlitePath := filepath.Join(dir, "graph.sqlite")
	jsonPath := filepath.Join(dir, "graph.json")
	yamlPath := filepath.Join(dir, "graph.yaml")

	if _, err := os.Stat(sqlitePath); err == nil {
		return loadSQLite(sqlitePath)
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return loadJSON(jsonPath)
	}
	if _, err := os.Stat(yamlPath); err == nil {
		return loadYAML(yamlPath)
	}
	return nil, os.ErrNotExist
}

func saveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("persist: marshal %s: %w", filepath.Base(path), err)
	}
	return atomicWrite(path, data)
}

func loadYAML(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: unmarshal %s: %w", path, err)
	}
	if err := checkVersion(snap.SchemaVersion); err != nil {
		return nil, err
	}
	return &snap, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal %s: %w", filepath.Base(path), err)
	}
	return atomicWrite(path, data)
}

func loadJSON(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: unmarshal %s: %w", path, err)
	}
	if err := checkVersion(snap.SchemaVersion); err != nil {
		return nil, err
	}
	return &snap, nil
}

func checkVersion(v int) error {
	if v != SchemaVersion {
		return fmt.Errorf("persist: cache schema version %d incompatible with %d", v, SchemaVersion)
	}
	return nil
}

// atomicWrite writes data to a temp file in the same directory as path
// and renames it into place, so a crash mid-write never leaves a
// truncated cache file for the next Load to choke on (spec §4.9).
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("persist: rename into place: %w", err)
	}
	return nil
}

// registryEntry is one row of projects.json, the cache-wide index of every
// project ever indexed (spec §4.9's "projects.json registry").
type registryEntry struct {
	ProjectID string `json:"project_id"`
	Root      string `json:"root"`
}

func touchRegistry(cacheRoot, projectID, root string) error {
	regPath := filepath.Join(cacheRoot, "projects.json")
	var entries []registryEntry
	if data, err := os.ReadFile(regPath); err == nil {
		_ = json.Unmarshal(data, &entries)
	}
	found := false
	for i := range entries {
		if entries[i].ProjectID == projectID {
			entries[i].Root = root
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, registryEntry{ProjectID: projectID, Root: root})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProjectID < entries[j].ProjectID })

	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(regPath, data)
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: init schema: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS functions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	file TEXT NOT NULL,
	line_start INTEGER NOT NULL,
	line_end INTEGER NOT NULL,
	namespace TEXT NOT NULL,
	language TEXT NOT NULL,
	signature TEXT NOT NULL,
	enclosing_type TEXT NOT NULL,
	params_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);
CREATE INDEX IF NOT EXISTS idx_functions_file ON functions(file);
CREATE TABLE IF NOT EXISTS types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	file TEXT NOT NULL,
	line_start INTEGER NOT NULL,
	line_end INTEGER NOT NULL,
	namespace TEXT NOT NULL,
	language TEXT NOT NULL,
	kind TEXT NOT NULL,
	parent TEXT NOT NULL,
	external INTEGER NOT NULL,
	interfaces_json TEXT NOT NULL,
	methods_json TEXT NOT NULL,
	method_signatures_json TEXT NOT NULL DEFAULT '{}',
	fields_json TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS edges (
	caller_fn_id TEXT NOT NULL,
	callee_fn_id TEXT NOT NULL,
	callee_name TEXT NOT NULL,
	line INTEGER NOT NULL,
	caller_file TEXT NOT NULL,
	callee_file TEXT NOT NULL,
	resolved INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edges_caller ON edges(caller_fn_id);
CREATE INDEX IF NOT EXISTS idx_edges_callee ON edges(callee_fn_id);
CREATE TABLE IF NOT EXISTS file_hashes (
	path TEXT PRIMARY KEY,
	md5 TEXT NOT NULL,
	size INTEGER NOT NULL,
	last_updated INTEGER NOT NULL,
	language TEXT NOT NULL
);
`

func saveSQLite(path string, snap *Snapshot) error {
	_ = os.Remove(path) // full rewrite each save; a partial-write crash here is caught by Load's absence check on the next run
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("persist: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', ?), ('project_id', ?), ('project_root', ?)`,
		fmt.Sprint(snap.SchemaVersion), snap.ProjectID, snap.ProjectRoot); err != nil {
		return err
	}

	for _, fn := range snap.Functions {
		params, _ := json.Marshal(fn.Parameters)
		if _, err := tx.Exec(`INSERT OR REPLACE INTO functions
			(id, name, file, line_start, line_end, namespace, language, signature, enclosing_type, params_json)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			fn.ID.String(), fn.Name, fn.File, fn.LineStart, fn.LineEnd, fn.Namespace, fn.Language, fn.Signature, fn.EnclosingType.String(), string(params)); err != nil {
			return fmt.Errorf("persist: insert function: %w", err)
		}
	}

	for _, td := range snap.Types {
		ifaces, _ := json.Marshal(td.Interfaces)
		methods, _ := json.Marshal(td.Methods)
		methodSigs, _ := json.Marshal(td.MethodSignatures)
		fields, _ := json.Marshal(td.Fields)
		external := 0
		if td.External {
			external = 1
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO types
			(id, name, file, line_start, line_end, namespace, language, kind, parent, external, interfaces_json, methods_json, method_signatures_json, fields_json)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			td.ID.String(), td.Name, td.File, td.LineStart, td.LineEnd, td.Namespace, td.Language, string(td.Kind), td.Parent, external, string(ifaces), string(methods), string(methodSigs), string(fields)); err != nil {
			return fmt.Errorf("persist: insert type: %w", err)
		}
	}

	for _, e := range snap.Edges {
		resolved := 0
		if e.Resolved {
			resolved = 1
		}
		if _, err := tx.Exec(`INSERT INTO edges (caller_fn_id, callee_fn_id, callee_name, line, caller_file, callee_file, resolved)
			VALUES (?,?,?,?,?,?,?)`,
			e.CallerFnID.String(), e.CalleeFnID.String(), e.CalleeName, e.Line, e.CallerFile, e.CalleeFile, resolved); err != nil {
			return fmt.Errorf("persist: insert edge: %w", err)
		}
	}

	for path, meta := range snap.Files {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO file_hashes (path, md5, size, last_updated, language) VALUES (?,?,?,?,?)`,
			path, meta.MD5, meta.Size, meta.LastUpdated, meta.Language); err != nil {
			return fmt.Errorf("persist: insert file hash: %w", err)
		}
	}

	return tx.Commit()
}

func loadSQLite(path string) (*Snapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite: %w", err)
	}
	defer db.Close()

	snap := &Snapshot{Files: map[string]*model.FileMeta{}}

	row := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`)
	var versionStr string
	if err := row.Scan(&versionStr); err != nil {
		return nil, fmt.Errorf("persist: read schema version: %w", err)
	}
	fmt.Sscanf(versionStr, "%d", &snap.SchemaVersion)
	if err := checkVersion(snap.SchemaVersion); err != nil {
		return nil, err
	}
	db.QueryRow(`SELECT value FROM meta WHERE key = 'project_id'`).Scan(&snap.ProjectID)
	db.QueryRow(`SELECT value FROM meta WHERE key = 'project_root'`).Scan(&snap.ProjectRoot)

	rows, err := db.Query(`SELECT id, name, file, line_start, line_end, namespace, language, signature, enclosing_type, params_json FROM functions`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var fn model.Fn
		var idStr, enclosingStr, paramsJSON string
		if err := rows.Scan(&idStr, &fn.Name, &fn.File, &fn.LineStart, &fn.LineEnd, &fn.Namespace, &fn.Language, &fn.Signature, &enclosingStr, &paramsJSON); err != nil {
			rows.Close()
			return nil, err
		}
		fn.ID = parseID(idStr)
		fn.EnclosingType = parseID(enclosingStr)
		_ = json.Unmarshal([]byte(paramsJSON), &fn.Parameters)
		snap.Functions = append(snap.Functions, &fn)
	}
	rows.Close()

	rows, err = db.Query(`SELECT id, name, file, line_start, line_end, namespace, language, kind, parent, external, interfaces_json, methods_json, method_signatures_json, fields_json FROM types`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var td model.TypeDecl
		var idStr string
		var external int
		var ifacesJSON, methodsJSON, methodSigsJSON, fieldsJSON string
		if err := rows.Scan(&idStr, &td.Name, &td.File, &td.LineStart, &td.LineEnd, &td.Namespace, &td.Language, &td.Kind, &td.Parent, &external, &ifacesJSON, &methodsJSON, &methodSigsJSON, &fieldsJSON); err != nil {
			rows.Close()
			return nil, err
		}
		td.ID = parseID(idStr)
		td.External = external != 0
		_ = json.Unmarshal([]byte(ifacesJSON), &td.Interfaces)
		td.Methods = map[model.ID]bool{}
		_ = json.Unmarshal([]byte(methodsJSON), &td.Methods)
		td.MethodSignatures = map[string]model.MethodSig{}
		_ = json.Unmarshal([]byte(methodSigsJSON), &td.MethodSignatures)
		_ = json.Unmarshal([]byte(fieldsJSON), &td.Fields)
		snap.Types = append(snap.Types, &td)
	}
	rows.Close()

	rows, err = db.Query(`SELECT caller_fn_id, callee_fn_id, callee_name, line, caller_file, callee_file, resolved FROM edges`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e model.Edge
		var callerStr, calleeStr string
		var resolved int
		if err := rows.Scan(&callerStr, &calleeStr, &e.CalleeName, &e.Line, &e.CallerFile, &e.CalleeFile, &resolved); err != nil {
			rows.Close()
			return nil, err
		}
		e.CallerFnID = parseID(callerStr)
		e.CalleeFnID = parseID(calleeStr)
		e.Resolved = resolved != 0
		snap.Edges = append(snap.Edges, &e)
	}
	rows.Close()

	rows, err = db.Query(`SELECT path, md5, size, last_updated, language FROM file_hashes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var meta model.FileMeta
		if err := rows.Scan(&meta.Path, &meta.MD5, &meta.Size, &meta.LastUpdated, &meta.Language); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Files[meta.Path] = &meta
	}
	rows.Close()

	return snap, nil
}

func parseID(s string) model.ID {
	var hi, lo uint64
	if len(s) == 32 {
		fmt.Sscanf(s[:16], "%016x", &hi)
		fmt.Sscanf(s[16:], "%016x", &lo)
	}
	return model.ID{Hi: hi, Lo: lo}
}
