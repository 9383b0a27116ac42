package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Aleph-Alpha/schemacache/internal/schematest"
)

func TestBuildIndexesNestedAndAliases(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	for _, name := range []string{
		"acme.events.Outer",
		"acme.events.Outer.Inner",
		"com.acme.events.Outer",
		"com.acme.events.Outer.Inner",
		"RootField",
		"acme.orders.Order",
	} {
		_, ok := snap.Get(name)
		assert.True(t, ok, name)
	}

	outer, _ := snap.Get("acme.events.Outer")
	alias, _ := snap.Get("com.acme.events.Outer")
	assert.Equal(t, outer, alias)
	assert.Equal(t, "acme.events.Outer", string(outer.FullName()))

	inner, _ := snap.Get("com.acme.events.Outer.Inner")
	assert.Equal(t, "acme.events.Outer.Inner", string(inner.FullName()))

	// canonical + alias for Outer and Inner, canonical only for RootField and Order.
	assert.Equal(t, 6, snap.Len())
	assert.Len(t, snap.Names(), 6)
}

func TestBuildRecursiveType(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	outer, ok := snap.Get("acme.events.Outer")
	require.True(t, ok)
	parent := outer.Fields().ByName("parent")
	require.NotNil(t, parent)
	assert.Equal(t, outer.FullName(), parent.Message().FullName())
}

func TestBuildCrossFileReference(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	order, ok := snap.Get("acme.orders.Order")
	require.True(t, ok)
	assert.Equal(t, "acme.events.Outer", string(order.Fields().ByName("event").Message().FullName()))
}

func TestBuildDependencyOutOfOrder(t *testing.T) {
	data := schematest.Marshal(schematest.OrdersFile(), schematest.EventsFile())

	_, err := Build(data)
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "acme/orders.proto", perr.File)
}

func TestBuildInvalidBytes(t *testing.T) {
	_, err := Build([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaParse)
}

func TestBuildEmpty(t *testing.T) {
	snap, err := Build([]byte{})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	_, ok := snap.Get("anything")
	assert.False(t, ok)
}

func TestGetFallbacks(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		want string
		ok   bool
	}{
		{"exact canonical", "acme.events.Outer", "acme.events.Outer", true},
		{"leading dot", ".acme.events.Outer.Inner", "acme.events.Outer.Inner", true},
		{"leading dot root", ".RootField", "RootField", true},
		{"package-less path", "Outer.Inner", "acme.events.Outer.Inner", true},
		{"short name", "Order", "acme.orders.Order", true},
		{"unknown", "acme.events.Missing", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, ok := snap.Get(tt.key)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, string(md.FullName()))
			}
		})
	}
}

func TestTypeNames(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		".acme.events.Outer":       "com.acme.events.Outer",
		".acme.events.Outer.Inner": "com.acme.events.Outer.Inner",
		".RootField":               "RootField",
		".acme.orders.Order":       "acme.orders.Order",
	}, snap.TypeNames())
}

func TestCanonicalWinsOverAlias(t *testing.T) {
	// a.proto aliases its message to "b.Thing", which b.proto then declares canonically.
	a := schematest.File("a.proto", "a", "b", nil,
		schematest.Message("Thing", []*descriptorpb.FieldDescriptorProto{
			schematest.Scalar("x", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		}))
	b := schematest.File("b.proto", "b", "", nil,
		schematest.Message("Thing", []*descriptorpb.FieldDescriptorProto{
			schematest.Scalar("y", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		}))

	snap, err := Build(schematest.Marshal(a, b))
	require.NoError(t, err)

	md, ok := snap.Get("b.Thing")
	require.True(t, ok)
	assert.Equal(t, "b.Thing", string(md.FullName()))

	md, ok = snap.Get("a.Thing")
	require.True(t, ok)
	assert.Equal(t, "a.Thing", string(md.FullName()))

	assert.Equal(t, "a.Thing", snap.TypeNames()[".a.Thing"])
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	all := snap.All()
	delete(all, "acme.events.Outer")
	_, ok := snap.Get("acme.events.Outer")
	assert.True(t, ok)

	var nilSnap *Snapshot
	assert.Equal(t, 0, nilSnap.Len())
	assert.Empty(t, nilSnap.All())
}

func TestBuildRegistersExtensionTypes(t *testing.T) {
	snap, err := Build(schematest.Extensions())
	require.NoError(t, err)

	xt, err := snap.Types().FindExtensionByNumber("ext.Base", 100)
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("ext.tag"), xt.TypeDescriptor().FullName())

	_, err = snap.Types().FindExtensionByName("ext.tag")
	require.NoError(t, err)

	mt, err := snap.Types().FindMessageByName("ext.Base")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("ext.Base"), mt.Descriptor().FullName())

	var nilSnap *Snapshot
	_, err = nilSnap.Types().FindMessageByName("ext.Base")
	assert.ErrorIs(t, err, protoregistry.NotFound)
}

func TestBuildRegistersNestedMessageTypes(t *testing.T) {
	snap, err := Build(schematest.Events())
	require.NoError(t, err)

	for _, name := range []protoreflect.FullName{"acme.events.Outer", "acme.events.Outer.Inner", "RootField", "acme.orders.Order"} {
		_, err := snap.Types().FindMessageByName(name)
		assert.NoError(t, err, name)
	}
}

func TestResolverChain(t *testing.T) {
	events, err := Build(schematest.Events())
	require.NoError(t, err)
	ext, err := Build(schematest.Extensions())
	require.NoError(t, err)

	chain := ResolverChain{events.Types(), ext.Types()}

	_, err = chain.FindExtensionByNumber("ext.Base", 100)
	assert.NoError(t, err)
	mt, err := chain.FindMessageByURL("type.googleapis.com/acme.events.Outer")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("acme.events.Outer"), mt.Descriptor().FullName())

	_, err = chain.FindMessageByName("acme.events.Missing")
	assert.ErrorIs(t, err, protoregistry.NotFound)
	_, err = ResolverChain(nil).FindExtensionByName("ext.tag")
	assert.ErrorIs(t, err, protoregistry.NotFound)
}
