package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tidwall/btree"
	"mit.edu/dsg/relplan/common"
)

// DefaultName is the catalog name rendered in front of every scanned table.
const DefaultName = "beam"

// DefaultTableType is the type tag given to tables whose DDL names none.
const DefaultTableType = "text"

// Catalog maps table names to their schemas. It is populated by DDL execution
// and read by the plan compiler.
//
// The catalog is serialized as a single JSON blob through a PersistenceProvider.
// Registration is serialized by a mutex; lookups are lock-free so that explain
// calls running on other goroutines never wait behind a CREATE TABLE. A single
// compilation reads from a Snapshot so that it sees one consistent set of
// tables even if registration happens concurrently.
//
// Tables are immutable once registered. There is no ALTER or DROP.
type Catalog struct {
	catalogState

	name string
	mu   sync.Mutex

	// In-memory structures for fast lookups
	tableMap *xsync.MapOf[string, *Table] // TableName -> Table
	byName   *btree.BTreeG[*Table]        // ordered by name, for listing
}

// Column represents the basic unit of a table schema.
type Column struct {
	Name    string      `json:"name"`
	Type    common.Type `json:"type"`
	Comment string      `json:"comment,omitempty"`
}

// Table is the primary metadata structure. The type tag names the provider
// that would back the table at execution time ("text", "kafka", ...); the plan
// compiler only records it.
type Table struct {
	Oid     common.ObjectID `json:"oid"`
	Name    string          `json:"name"`
	Columns []Column        `json:"columns"`
	TypeTag string          `json:"type"`
	Comment string          `json:"comment,omitempty"`
}

// PersistenceProvider abstracts how the catalog is saved to and loaded from disk.
type PersistenceProvider interface {
	LoadCatalogState() (json string, err error)
	SaveCatalogState(json string) error
}

func (t *Table) String() string {
	b, _ := json.MarshalIndent(t, "", "  ")
	return string(b)
}


type catalogState struct {
	NextId uint32   `json:"next_id"`
	Tables []*Table `json:"tables"`
}

func (c *Catalog) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

func (c *Catalog) toJSON() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Catalog) fromJSON(jsonData string) error {
	if err := json.Unmarshal([]byte(jsonData), c); err != nil {
		return err
	}
	for _, t := range c.catalogState.Tables {
		if t.Oid == common.InvalidObjectID {
			return fmt.Errorf("table '%s' has no object id", t.Name)
		}
		if err := validateSchema(t.Name, t.Columns); err != nil {
			return err
		}
		c.index(t)
	}
	return nil
}

func (c *Catalog) index(t *Table) {
	c.tableMap.Store(t.Name, t)
	c.byName.Set(t)
}

// NewCatalog initializes a catalog with the given name. It attempts to load
// existing state from the provider; if no state exists, it starts empty.
func NewCatalog(name string, provider PersistenceProvider) (*Catalog, error) {
	if name == "" {
		name = DefaultName
	}
	result := &Catalog{
		catalogState: catalogState{
			NextId: 0,
			Tables: make([]*Table, 0),
		},
		name:     name,
		tableMap: xsync.NewMapOf[string, *Table](),
		byName: btree.NewBTreeG(func(a, b *Table) bool {
			return a.Name < b.Name
		}),
	}

	jsonData, err := provider.LoadCatalogState()
	if errors.Is(err, os.ErrNotExist) {
		// Start from scratch
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	if err = result.fromJSON(jsonData); err != nil {
		// Parsing errors are fatal system errors, usually indicating corruption
		return nil, fmt.Errorf("failed to parse catalog state: %w", err)
	}

	return result, nil
}

// Name returns the catalog name, the first component of every scan's table path.
func (c *Catalog) Name() string {
	return c.name
}

func validateSchema(tableName string, columns []Column) error {
	if len(columns) == 0 {
		return common.NewError(common.UnsupportedSyntaxError, "table '%s' must have at least one column", tableName)
	}
	seen := make(map[string]struct{}, len(columns))
	// Column names resolve case-insensitively, so they must be unique that way.
	for _, col := range columns {
		key := strings.ToLower(col.Name)
		if _, dup := seen[key]; dup {
			return common.NewError(common.DuplicateObjectError,
				"column '%s' specified more than once in table '%s'", col.Name, tableName)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// AddTable registers a new table in the catalog.
// It assigns a unique ObjectID to the table and persists the updated state. If a table with that name
// already exists, or the schema repeats a column name, it returns DuplicateObjectError.
func (c *Catalog) AddTable(tableName string, columns []Column, typeTag string, comment string, provider PersistenceProvider) (*Table, error) {
	if err := validateSchema(tableName, columns); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tableMap.Load(tableName); exists {
		return nil, common.NewError(common.DuplicateObjectError, "table '%s' already exists", tableName)
	}
	if typeTag == "" {
		typeTag = DefaultTableType
	}

	// oid 0 is reserved for INVALID
	prevID := c.NextId
	c.NextId++

	t := &Table{
		Oid:     common.ObjectID(c.NextId),
		Name:    tableName,
		Columns: append([]Column(nil), columns...),
		TypeTag: typeTag,
		Comment: comment,
	}

	state := &c.catalogState
	state.Tables = append(state.Tables, t)
	rollback := func() {
		state.Tables = state.Tables[:len(state.Tables)-1]
		state.NextId = prevID
	}
	jsonData, err := c.toJSON()
	if err != nil {
		rollback()
		return nil, err
	}
	if err := provider.SaveCatalogState(jsonData); err != nil {
		rollback()
		return nil, err
	}
	c.index(t)
	return t, nil
}

// GetTableMetadata fetches the schema for a specific table name.
func (c *Catalog) GetTableMetadata(tableName string) (*Table, error) {
	table, exists := c.tableMap.Load(tableName)
	if !exists {
		return nil, common.NewError(common.NoSuchObjectError, "table '%s' does not exist", tableName)
	}
	return table, nil
}

// Tables returns every registered table ordered by name.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, 0, c.byName.Len())
	c.byName.Scan(func(t *Table) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Snapshot freezes the current set of tables for one compilation.
func (c *Catalog) Snapshot() *Snapshot {
	s := &Snapshot{name: c.name, tables: make(map[string]*Table, c.tableMap.Size())}
	c.tableMap.Range(func(name string, t *Table) bool {
		s.tables[name] = t
		return true
	})
	return s
}

// Snapshot is a read-only view of the catalog taken at one point in time.
type Snapshot struct {
	name   string
	tables map[string]*Table
}

// Name returns the name of the catalog the snapshot was taken from.
func (s *Snapshot) Name() string {
	return s.name
}

// GetTableMetadata fetches the schema for a specific table name.
func (s *Snapshot) GetTableMetadata(tableName string) (*Table, error) {
	table, exists := s.tables[tableName]
	if !exists {
		return nil, common.NewError(common.NoSuchObjectError, "table '%s' does not exist", tableName)
	}
	return table, nil
}
