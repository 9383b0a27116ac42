// Package schematest builds descriptor-set fixtures for tests.
package schematest

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// File describes a proto3 file. JavaPackage may be empty.
func File(name, pkg, javaPackage string, deps []string, msgs ...*descriptorpb.DescriptorProto) *descriptorpb.FileDescriptorProto {
	f := &descriptorpb.FileDescriptorProto{
		Name:        proto.String(name),
		Syntax:      proto.String("proto3"),
		Dependency:  deps,
		MessageType: msgs,
	}
	if pkg != "" {
		f.Package = proto.String(pkg)
	}
	if javaPackage != "" {
		f.Options = &descriptorpb.FileOptions{JavaPackage: proto.String(javaPackage)}
	}
	return f
}

// Message describes a message with optional nested messages.
func Message(name string, fields []*descriptorpb.FieldDescriptorProto, nested ...*descriptorpb.DescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:       proto.String(name),
		Field:      fields,
		NestedType: nested,
	}
}

// Scalar describes a singular scalar field.
func Scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
		JsonName: proto.String(name),
	}
}

// MessageRef describes a singular message field; typeName is fully
// qualified with a leading dot, e.g. ".acme.events.Outer".
func MessageRef(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

// Marshal encodes files, in order, as a serialized FileDescriptorSet.
func Marshal(files ...*descriptorpb.FileDescriptorProto) []byte {
	b, err := proto.Marshal(&descriptorpb.FileDescriptorSet{File: files})
	if err != nil {
		panic(err)
	}
	return b
}

// EventsFile is acme/events.proto: package acme.events with java_package
// com.acme.events, holding Outer (recursive, with nested Inner).
func EventsFile() *descriptorpb.FileDescriptorProto {
	return File("acme/events.proto", "acme.events", "com.acme.events", nil,
		Message("Outer",
			[]*descriptorpb.FieldDescriptorProto{
				Scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				MessageRef("inner", 2, ".acme.events.Outer.Inner"),
				MessageRef("parent", 3, ".acme.events.Outer"),
			},
			Message("Inner", []*descriptorpb.FieldDescriptorProto{
				Scalar("count", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			}),
		),
	)
}

// EventsFileV2 is EventsFile with an extra "source" field (number 4) on Outer.
func EventsFileV2() *descriptorpb.FileDescriptorProto {
	f := EventsFile()
	outer := f.MessageType[0]
	outer.Field = append(outer.Field, Scalar("source", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING))
	return f
}

// RootFile is root.proto: no package, no java_package, one message RootField.
func RootFile() *descriptorpb.FileDescriptorProto {
	return File("root.proto", "", "", nil,
		Message("RootField", []*descriptorpb.FieldDescriptorProto{
			Scalar("value", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		}),
	)
}

// OrdersFile is acme/orders.proto, which imports acme/events.proto.
func OrdersFile() *descriptorpb.FileDescriptorProto {
	return File("acme/orders.proto", "acme.orders", "", []string{"acme/events.proto"},
		Message("Order", []*descriptorpb.FieldDescriptorProto{
			Scalar("number", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			MessageRef("event", 2, ".acme.events.Outer"),
		}),
	)
}

// Events is the serialized set {EventsFile, RootFile, OrdersFile}.
func Events() []byte {
	return Marshal(EventsFile(), RootFile(), OrdersFile())
}

// EventsV2 is Events with EventsFileV2 in place of EventsFile.
func EventsV2() []byte {
	return Marshal(EventsFileV2(), RootFile(), OrdersFile())
}

// ExtensionFile is ext/base.proto, a proto2 file declaring message ext.Base
// (name = 1, extensions 100 to 200) and the string extension ext.tag = 100.
func ExtensionFile() *descriptorpb.FileDescriptorProto {
	base := Message("Base", []*descriptorpb.FieldDescriptorProto{
		Scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
	})
	base.ExtensionRange = []*descriptorpb.DescriptorProto_ExtensionRange{
		{Start: proto.Int32(100), End: proto.Int32(201)},
	}

	tag := Scalar("tag", 100, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	tag.JsonName = nil
	tag.Extendee = proto.String(".ext.Base")

	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String("ext/base.proto"),
		Package:     proto.String("ext"),
		Syntax:      proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{base},
		Extension:   []*descriptorpb.FieldDescriptorProto{tag},
	}
}

// Extensions is the serialized set {ExtensionFile}.
func Extensions() []byte {
	return Marshal(ExtensionFile())
}

// ExtensionPayload is an ext.Base with name "a" and the extension ext.tag
// set to "x".
var ExtensionPayload = []byte{0x0a, 0x01, 'a', 0xa2, 0x06, 0x01, 'x'}
