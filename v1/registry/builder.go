package registry

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Build parses a serialized FileDescriptorSet. An empty input yields an
// empty Snapshot.
func Build(data []byte) (*Snapshot, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, &ParseError{Err: err}
	}
	return BuildFromSet(set)
}

// BuildFromSet resolves the files of set in order and indexes their messages.
func BuildFromSet(set *descriptorpb.FileDescriptorSet) (*Snapshot, error) {
	b := newBuilder()
	for _, fdp := range set.GetFile() {
		fd, err := protodesc.NewFile(fdp, b.files)
		if err != nil {
			return nil, &ParseError{File: fdp.GetName(), Err: err}
		}
		if err := b.files.RegisterFile(fd); err != nil {
			return nil, &ParseError{File: fdp.GetName(), Err: err}
		}
		if err := registerTypes(b.snapshot.types, fd.Enums(), fd.Messages(), fd.Extensions()); err != nil {
			return nil, &ParseError{File: fdp.GetName(), Err: err}
		}
		b.addMessages(fd.Messages(), fdp.GetOptions().GetJavaPackage(), "")
	}
	return b.snapshot, nil
}

type builder struct {
	files    *protoregistry.Files
	snapshot *Snapshot

	canonical map[string]struct{}
	// aliasOwner maps an alias key to the canonical name of its message.
	aliasOwner map[string]string
}

func newBuilder() *builder {
	files := new(protoregistry.Files)
	return &builder{
		files: files,
		snapshot: &Snapshot{
			byName:    make(map[string]protoreflect.MessageDescriptor),
			byPath:    make(map[string]protoreflect.MessageDescriptor),
			typeNames: make(map[string]string),
			types:     new(protoregistry.Types),
		},
		canonical:  make(map[string]struct{}),
		aliasOwner: make(map[string]string),
	}
}

func (b *builder) addMessages(msgs protoreflect.MessageDescriptors, javaPackage, parentPath string) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)

		path := string(md.Name())
		if parentPath != "" {
			path = parentPath + "." + path
		}
		canonical := string(md.FullName())

		if owner, ok := b.aliasOwner[canonical]; ok {
			// A canonical name takes its key back from an earlier alias.
			b.snapshot.typeNames["."+owner] = owner
			delete(b.aliasOwner, canonical)
		}
		b.snapshot.byName[canonical] = md
		b.canonical[canonical] = struct{}{}

		key := canonical
		if javaPackage != "" {
			alias := javaPackage + "." + path
			if _, taken := b.canonical[alias]; !taken {
				if prev, ok := b.aliasOwner[alias]; ok && prev != canonical {
					b.snapshot.typeNames["."+prev] = prev
				}
				b.snapshot.byName[alias] = md
				b.aliasOwner[alias] = canonical
				key = alias
			}
		}
		b.snapshot.typeNames["."+canonical] = key

		if _, ok := b.snapshot.byPath[path]; !ok {
			b.snapshot.byPath[path] = md
		}

		b.addMessages(md.Messages(), javaPackage, path)
	}
}

// registerTypes adds dynamic enum, message and extension types, nested ones
// included, so that extensions and Any payloads resolve against the set.
func registerTypes(types *protoregistry.Types, enums protoreflect.EnumDescriptors, msgs protoreflect.MessageDescriptors, exts protoreflect.ExtensionDescriptors) error {
	for i := 0; i < enums.Len(); i++ {
		if err := types.RegisterEnum(dynamicpb.NewEnumType(enums.Get(i))); err != nil {
			return err
		}
	}
	for i := 0; i < exts.Len(); i++ {
		if err := types.RegisterExtension(dynamicpb.NewExtensionType(exts.Get(i))); err != nil {
			return err
		}
	}
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if err := types.RegisterMessage(dynamicpb.NewMessageType(md)); err != nil {
			return err
		}
		if err := registerTypes(types, md.Enums(), md.Messages(), md.Extensions()); err != nil {
			return err
		}
	}
	return nil
}
