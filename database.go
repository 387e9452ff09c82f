package pciids

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exodus-project/pciids/fetch"
	"github.com/exodus-project/pciids/filter"
	"github.com/exodus-project/pciids/model"
	"github.com/exodus-project/pciids/parser"
)

// Database is the main entry point of the library. It holds the two entity
// trees assembled from the pci.ids file and serves queries over them.
//
// A Database starts empty and not ready; load it with Load, LoadBytes or
// LoadRemote before querying. Loads are atomic bulk reloads: existing
// contents are cleared first and the new trees are installed only if the
// whole parse succeeds, so queries never observe a half loaded state. A
// failed load leaves the database empty and not ready.
//
// Thread-safety: all methods are safe for concurrent use. Loads and queries
// acquire one exclusive lock for their entire duration; readers block while
// a reload, including its network transfer, is in progress.
type Database struct {
	mu      sync.Mutex
	ready   bool
	vendors map[string]*model.Vendor
	classes map[string]*model.DeviceClass
	stats   Stats

	logger  *slog.Logger
	parser  *parser.Parser
	fetcher *fetch.Fetcher
	engine  *filter.Engine
	tel     *telemetry
}

// Stats describes the state of the database after the last successful load.
type Stats struct {
	// Ready reports whether the database has been loaded.
	Ready bool

	// Generation is a unique id assigned per successful load. It changes on
	// every reload, so callers can detect that contents were replaced.
	Generation string

	// LoadedAt is the time of the last successful load.
	LoadedAt time.Time

	// Entity counts of the loaded trees.
	Vendors           int
	Devices           int
	Subsystems        int
	Classes           int
	Subclasses        int
	ProgramInterfaces int
}

// DeviceMatch is one result of an expression query: a device together with
// its owning vendor.
type DeviceMatch struct {
	Vendor *model.Vendor
	Device *model.Device
}

// New creates an empty Database.
func New(opts ...Option) (*Database, error) {
	cfg := &dbConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	tel, err := newTelemetry(cfg.tracer, cfg.meter)
	if err != nil {
		return nil, &DBError{Op: "New", Kind: KindConfiguration, Err: err}
	}

	engine, err := filter.NewEngine()
	if err != nil {
		return nil, &DBError{Op: "New", Kind: KindConfiguration, Err: err}
	}

	return &Database{
		vendors: make(map[string]*model.Vendor),
		classes: make(map[string]*model.DeviceClass),
		logger:  cfg.logger,
		parser:  parser.New(),
		fetcher: fetch.New(fetch.Options{
			URL:    cfg.sourceURL,
			Client: cfg.httpClient,
			Cache:  cfg.cache,
			Logger: cfg.logger,
		}),
		engine: engine,
		tel:    tel,
	}, nil
}

// NewFromConfig creates a Database from a configuration file, combined with
// any additional options. Options take precedence over the file.
func NewFromConfig(cfg *Config, opts ...Option) (*Database, error) {
	fileOpts, err := configOptions(cfg)
	if err != nil {
		return nil, err
	}
	return New(append(fileOpts, opts...)...)
}

// Load reads the complete pci.ids contents from r and installs the parsed
// trees. See the type documentation for the reload discipline.
func (db *Database) Load(ctx context.Context, r io.Reader) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.load(ctx, "Database.Load", func(context.Context) (io.Reader, error) {
		return r, nil
	})
}

// LoadBytes installs the parsed trees from an in-memory copy of the
// pci.ids file.
func (db *Database) LoadBytes(ctx context.Context, data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.load(ctx, "Database.LoadBytes", func(context.Context) (io.Reader, error) {
		return bytes.NewReader(data), nil
	})
}

// LoadRemote retrieves the pci.ids file from the configured source and
// installs the parsed trees. The transfer runs inside the exclusive
// critical section; concurrent queries block until the reload finishes.
func (db *Database) LoadRemote(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.load(ctx, "Database.LoadRemote", func(ctx context.Context) (io.Reader, error) {
		data, err := db.fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	})
}

// load is the unexported reload core. The caller must hold db.mu. The source
// callback defers retrieval so that its failure, too, clears the database.
func (db *Database) load(ctx context.Context, op string, source func(context.Context) (io.Reader, error)) error {
	ctx, span := db.tel.startLoadSpan(ctx, op)
	start := time.Now()

	// Clear first: a failed reload must not serve stale data.
	db.ready = false
	db.vendors = make(map[string]*model.Vendor)
	db.classes = make(map[string]*model.DeviceClass)
	db.stats = Stats{}

	r, err := source(ctx)
	if err != nil {
		dbErr := &DBError{Op: op, Kind: KindNetwork, Err: err}
		db.tel.recordLoad(ctx, span, time.Since(start), dbErr)
		return dbErr
	}

	res, err := db.parser.Parse(r)
	if err != nil {
		dbErr := classifyLoadError(op, err)
		db.tel.recordLoad(ctx, span, time.Since(start), dbErr)
		db.logger.Warn("pci.ids load failed", "op", op, "error", err)
		return dbErr
	}

	db.vendors = res.Vendors
	db.classes = res.Classes
	db.ready = true
	db.stats = db.newStats()

	elapsed := time.Since(start)
	db.tel.recordLoad(ctx, span, elapsed, nil)
	db.logger.Debug("pci.ids loaded",
		"op", op,
		"generation", db.stats.Generation,
		"vendors", db.stats.Vendors,
		"classes", db.stats.Classes,
		"elapsed", elapsed,
	)
	return nil
}

// newStats assembles the Stats for a freshly installed load.
func (db *Database) newStats() Stats {
	stats := Stats{
		Ready:      true,
		Generation: uuid.NewString(),
		LoadedAt:   time.Now(),
		Vendors:    len(db.vendors),
		Classes:    len(db.classes),
	}

	for _, v := range db.vendors {
		devices := v.Devices()
		stats.Devices += len(devices)
		for _, d := range devices {
			stats.Subsystems += len(d.Subsystems())
		}
	}
	for _, c := range db.classes {
		subclasses := c.Subclasses()
		stats.Subclasses += len(subclasses)
		for _, s := range subclasses {
			stats.ProgramInterfaces += len(s.ProgramInterfaces())
		}
	}

	return stats
}

// Stats returns a snapshot of the database state. Unlike queries, Stats is
// valid on an unloaded database and reports Ready false.
func (db *Database) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.stats
}

// Ready reports whether the database has been loaded successfully.
func (db *Database) Ready() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.ready
}

// FindAllVendors returns all vendors ordered by ascending numeric id.
func (db *Database) FindAllVendors() ([]*model.Vendor, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllVendors"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	rv := make([]*model.Vendor, 0, len(db.vendors))
	for _, v := range db.vendors {
		rv = append(rv, v)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].Less(rv[j]) })
	return rv, nil
}

// FindVendor returns the vendor with the given id, or nil if the id is
// unknown.
func (db *Database) FindVendor(vendorID string) (*model.Vendor, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindVendor"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	return db.vendors[vendorID], nil
}

// FindAllDevices returns all devices of the given vendor ordered by
// ascending numeric id. An unknown vendor id yields an empty list.
func (db *Database) FindAllDevices(vendorID string) ([]*model.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllDevices"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	vendor, ok := db.vendors[vendorID]
	if !ok {
		return []*model.Device{}, nil
	}
	return vendor.Devices(), nil
}

// FindDevice returns the device with the given id within the given vendor,
// or nil if either id is unknown.
func (db *Database) FindDevice(vendorID, deviceID string) (*model.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindDevice"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	vendor, ok := db.vendors[vendorID]
	if !ok {
		return nil, nil
	}
	return vendor.Device(deviceID), nil
}

// FindAllSubsystems returns all subsystems of the given device ordered by
// ascending numeric subvendor id, then subsystem id. Unknown ids yield an
// empty list.
func (db *Database) FindAllSubsystems(vendorID, deviceID string) ([]*model.Subsystem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllSubsystems"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	vendor, ok := db.vendors[vendorID]
	if !ok {
		return []*model.Subsystem{}, nil
	}
	device := vendor.Device(deviceID)
	if device == nil {
		return []*model.Subsystem{}, nil
	}
	return device.Subsystems(), nil
}

// FindSubsystemsBySubvendor returns the subsystems of the given device whose
// subvendor id matches, ordered by ascending numeric subsystem id. Unknown
// ids yield an empty list.
func (db *Database) FindSubsystemsBySubvendor(vendorID, deviceID, subvendorID string) ([]*model.Subsystem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindSubsystemsBySubvendor"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	vendor, ok := db.vendors[vendorID]
	if !ok {
		return []*model.Subsystem{}, nil
	}
	device := vendor.Device(deviceID)
	if device == nil {
		return []*model.Subsystem{}, nil
	}
	return device.SubsystemsBySubvendor(subvendorID), nil
}

// FindAllDeviceClasses returns all device classes ordered by ascending
// numeric id.
func (db *Database) FindAllDeviceClasses() ([]*model.DeviceClass, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllDeviceClasses"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	rv := make([]*model.DeviceClass, 0, len(db.classes))
	for _, c := range db.classes {
		rv = append(rv, c)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].Less(rv[j]) })
	return rv, nil
}

// FindDeviceClass returns the device class with the given id, or nil if the
// id is unknown.
func (db *Database) FindDeviceClass(classID string) (*model.DeviceClass, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindDeviceClass"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	return db.classes[classID], nil
}

// FindAllSubclasses returns all subclasses of the given class ordered by
// ascending numeric id. An unknown class id yields an empty list.
func (db *Database) FindAllSubclasses(classID string) ([]*model.DeviceSubclass, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllSubclasses"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	class, ok := db.classes[classID]
	if !ok {
		return []*model.DeviceSubclass{}, nil
	}
	return class.Subclasses(), nil
}

// FindAllProgramInterfaces returns all program interfaces of the given
// subclass ordered by ascending numeric id. Unknown ids yield an empty list.
func (db *Database) FindAllProgramInterfaces(classID, subclassID string) ([]*model.ProgramInterface, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindAllProgramInterfaces"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	class, ok := db.classes[classID]
	if !ok {
		return []*model.ProgramInterface{}, nil
	}
	subclass := class.Subclass(subclassID)
	if subclass == nil {
		return []*model.ProgramInterface{}, nil
	}
	return subclass.ProgramInterfaces(), nil
}

// FindDevicesWhere returns the (vendor, device) pairs matching a CEL filter
// expression, ordered by vendor then device numeric id. See package filter
// for the expression surface.
func (db *Database) FindDevicesWhere(expr string) ([]DeviceMatch, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	const op = "Database.FindDevicesWhere"
	if !db.ready {
		return nil, newNotReadyError(op)
	}
	db.tel.countQuery(op)

	pred, err := db.engine.Compile(expr)
	if err != nil {
		return nil, &DBError{Op: op, Kind: KindValidation, Err: err}
	}

	vendors := make([]*model.Vendor, 0, len(db.vendors))
	for _, v := range db.vendors {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].Less(vendors[j]) })

	matches := make([]DeviceMatch, 0)
	for _, vendor := range vendors {
		for _, device := range vendor.Devices() {
			ok, err := pred.Match(vendor, device)
			if err != nil {
				return nil, &DBError{Op: op, Kind: KindInternal, Err: err}
			}
			if ok {
				matches = append(matches, DeviceMatch{Vendor: vendor, Device: device})
			}
		}
	}
	return matches, nil
}
