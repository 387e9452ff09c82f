package pciids

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/exodus-project/pciids/model"
)

// sampleIDs is a miniature pci.ids file: header commentary, two vendors out
// of numeric order, and a slice of the class taxonomy.
const sampleIDs = `#
#	List of PCI ID's
#
#	Maintained by volunteers.

001c  PEAK-System Technik GmbH
	0001  PCAN-PCI CAN-Bus controller
		001c 0004  2 Channel CAN Bus SJC1000
		001c 0005  2 Channel CAN Bus SJA1000
0014  Loongson Technology LLC
	7a00  Hyper Transport Bridge
# host bridge for the 3A5000
	7a05  Vivante GPU
C 00  Unclassified device
	00  Non-VGA unclassified device
	01  VGA compatible unclassified device
C 0c  Serial bus controller
	03  USB controller
		00  UHCI
		10  OHCI
		20  EHCI
`

func newTestDatabase(t *testing.T, opts ...Option) *Database {
	t.Helper()
	db, err := New(opts...)
	require.NoError(t, err)
	return db
}

func loadSample(t *testing.T, db *Database) {
	t.Helper()
	require.NoError(t, db.Load(context.Background(), strings.NewReader(sampleIDs)))
}

func TestQueriesBeforeLoadFailNotReady(t *testing.T) {
	db := newTestDatabase(t)

	queries := map[string]func() error{
		"FindAllVendors":            func() error { _, err := db.FindAllVendors(); return err },
		"FindVendor":                func() error { _, err := db.FindVendor("8086"); return err },
		"FindAllDevices":            func() error { _, err := db.FindAllDevices("8086"); return err },
		"FindDevice":                func() error { _, err := db.FindDevice("8086", "1237"); return err },
		"FindAllSubsystems":         func() error { _, err := db.FindAllSubsystems("8086", "1237"); return err },
		"FindSubsystemsBySubvendor": func() error { _, err := db.FindSubsystemsBySubvendor("8086", "1237", "001c"); return err },
		"FindAllDeviceClasses":      func() error { _, err := db.FindAllDeviceClasses(); return err },
		"FindDeviceClass":           func() error { _, err := db.FindDeviceClass("0c"); return err },
		"FindAllSubclasses":         func() error { _, err := db.FindAllSubclasses("0c"); return err },
		"FindAllProgramInterfaces":  func() error { _, err := db.FindAllProgramInterfaces("0c", "03"); return err },
		"FindDevicesWhere":          func() error { _, err := db.FindDevicesWhere(`true`); return err },
	}

	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			err := query()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotReady))
		})
	}

	assert.False(t, db.Ready())
}

func TestLoadAndQueryVendors(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	require.True(t, db.Ready())

	vendors, err := db.FindAllVendors()
	require.NoError(t, err)
	require.Len(t, vendors, 2)

	// Sorted by numeric id regardless of file order.
	assert.Equal(t, "0014", vendors[0].ID())
	assert.Equal(t, "001c", vendors[1].ID())

	vendor, err := db.FindVendor("001c")
	require.NoError(t, err)
	require.NotNil(t, vendor)
	assert.Equal(t, "PEAK-System Technik GmbH", vendor.Name())

	missing, err := db.FindVendor("ffff")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoadSpecimenSubsystems(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	device, err := db.FindDevice("001c", "0001")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "PCAN-PCI CAN-Bus controller", device.Name())

	subsystems, err := db.FindAllSubsystems("001c", "0001")
	require.NoError(t, err)
	require.Len(t, subsystems, 2)
	assert.Equal(t, "0004", subsystems[0].ID())
	assert.Equal(t, "001c", subsystems[0].SubvendorID())
	assert.Equal(t, "2 Channel CAN Bus SJC1000", subsystems[0].Name())

	bySubvendor, err := db.FindSubsystemsBySubvendor("001c", "0001", "001c")
	require.NoError(t, err)
	assert.Len(t, bySubvendor, 2)

	none, err := db.FindSubsystemsBySubvendor("001c", "0001", "dead")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnknownIDsYieldEmptyLists(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	devices, err := db.FindAllDevices("beef")
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)

	subsystems, err := db.FindAllSubsystems("001c", "9999")
	require.NoError(t, err)
	assert.Empty(t, subsystems)

	device, err := db.FindDevice("beef", "0001")
	require.NoError(t, err)
	assert.Nil(t, device)

	subclasses, err := db.FindAllSubclasses("ff")
	require.NoError(t, err)
	assert.Empty(t, subclasses)
}

func TestClassTaxonomyQueries(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	classes, err := db.FindAllDeviceClasses()
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "00", classes[0].ID())
	assert.Equal(t, "0c", classes[1].ID())

	class, err := db.FindDeviceClass("0c")
	require.NoError(t, err)
	require.NotNil(t, class)
	assert.Equal(t, "Serial bus controller", class.Name())

	subclasses, err := db.FindAllSubclasses("0c")
	require.NoError(t, err)
	require.Len(t, subclasses, 1)
	assert.Equal(t, "USB controller", subclasses[0].Name())

	ifaces, err := db.FindAllProgramInterfaces("0c", "03")
	require.NoError(t, err)
	require.Len(t, ifaces, 3)
	assert.Equal(t, "UHCI", ifaces[0].Name())
	assert.Equal(t, "EHCI", ifaces[2].Name())
}

func TestCommentAttachmentThroughLoad(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	device, err := db.FindDevice("0014", "7a05")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "host bridge for the 3A5000", device.Comment())

	vendor, err := db.FindVendor("001c")
	require.NoError(t, err)
	// Header commentary is separated by a blank line and must not attach.
	assert.Equal(t, model.NoComment, vendor.Comment())
}

func TestFailedReloadClearsDatabase(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)
	require.True(t, db.Ready())

	err := db.Load(context.Background(), strings.NewReader("zzzz broken line"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))

	// No stale data: container is empty and not ready.
	assert.False(t, db.Ready())
	_, err = db.FindAllVendors()
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Equal(t, Stats{}, db.Stats())
}

func TestReloadReplacesContentsAndGeneration(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	first := db.Stats()
	require.True(t, first.Ready)
	require.NotEmpty(t, first.Generation)

	require.NoError(t, db.LoadBytes(context.Background(), []byte("8086  Intel Corporation\n")))

	second := db.Stats()
	assert.NotEqual(t, first.Generation, second.Generation)
	assert.Equal(t, 1, second.Vendors)

	vendors, err := db.FindAllVendors()
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "8086", vendors[0].ID())
}

func TestStatsCounts(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	stats := db.Stats()
	assert.Equal(t, 2, stats.Vendors)
	assert.Equal(t, 3, stats.Devices)
	assert.Equal(t, 2, stats.Subsystems)
	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, 3, stats.Subclasses)
	assert.Equal(t, 3, stats.ProgramInterfaces)
	assert.False(t, stats.LoadedAt.IsZero())
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIDs))
	}))
	defer srv.Close()

	db := newTestDatabase(t, WithSourceURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, db.LoadRemote(context.Background()))

	vendors, err := db.FindAllVendors()
	require.NoError(t, err)
	assert.Len(t, vendors, 2)
}

func TestLoadRemoteFailureIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	db := newTestDatabase(t, WithSourceURL(srv.URL), WithHTTPClient(srv.Client()))
	err := db.LoadRemote(context.Background())
	require.Error(t, err)

	var dbErr *DBError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, KindNetwork, dbErr.Kind)
	assert.False(t, db.Ready())
}

func TestFindDevicesWhere(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	matches, err := db.FindDevicesWhere(`vendor.id == "001c"`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "0001", matches[0].Device.ID())

	matches, err = db.FindDevicesWhere(`device.name.contains("GPU")`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "7a05", matches[0].Device.ID())
	assert.Equal(t, "0014", matches[0].Vendor.ID())

	matches, err = db.FindDevicesWhere(`device.subsystems >= 2`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "0001", matches[0].Device.ID())

	none, err := db.FindDevicesWhere(`vendor.id == "dead"`)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindDevicesWhereCompileError(t *testing.T) {
	db := newTestDatabase(t)
	loadSample(t, db)

	_, err := db.FindDevicesWhere(`vendor.id ==`)
	require.Error(t, err)

	var dbErr *DBError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, KindValidation, dbErr.Kind)
}

func TestLoadWithTelemetry(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	db := newTestDatabase(t,
		WithTracer(tp.Tracer("pciids-test")),
		WithMeter(noop.NewMeterProvider().Meter("pciids-test")),
	)

	loadSample(t, db)
	require.True(t, db.Ready())

	// A failing load must record telemetry without panicking either.
	err := db.Load(context.Background(), strings.NewReader("broken * line"))
	assert.Error(t, err)

	_, err = db.FindAllVendors()
	assert.True(t, errors.Is(err, ErrNotReady))
}
