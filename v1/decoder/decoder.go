// Package decoder turns wire-format bytes into dynamic protobuf messages,
// and JSON into wire-format bytes, using descriptors resolved through a
// client.Client.
//
// DecodeWithRefresh handles producers that are ahead of the cached schemas:
// if the decoded message carries fields the schema does not know, the client
// is refreshed once and the bytes are decoded again. Clients implementing
// client.SyncRefresher are refreshed synchronously, so the second decode sees
// the reloaded schema even when background auto-refresh is enabled.
//
// Extensions declared in the descriptor sets are resolved while decoding and
// are not treated as unknown fields.
//
//	d := decoder.New(c, decoder.WithLogger(log))
//	msg, err := d.DecodeWithRefresh(ctx, "com.acme.events.Outer", payload)
package decoder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/Aleph-Alpha/schemacache/v1/client"
	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// Logger is the logging surface used by the decoder.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Decoder decodes and encodes messages by schema name. It is safe for
// concurrent use.
type Decoder struct {
	client   client.Client
	logger   Logger
	observer observability.Observer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// WithObserver sets the observer notified of every decode and encode.
func WithObserver(o observability.Observer) Option {
	return func(d *Decoder) { d.observer = o }
}

// New returns a Decoder resolving schemas through c.
func New(c client.Client, opts ...Option) *Decoder {
	d := &Decoder{client: c}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses data as the message type called name.
func (d *Decoder) Decode(ctx context.Context, name string, data []byte) (*dynamicpb.Message, error) {
	start := time.Now()
	msg, err := d.decode(ctx, name, data)
	var fullName protoreflect.FullName
	if msg != nil {
		fullName = msg.Descriptor().FullName()
	}
	d.observeOperation("decode", name, fullName, time.Since(start), err, int64(len(data)))
	return msg, err
}

// DecodeWithRefresh decodes data and, if the result contains unknown fields,
// refreshes the client and decodes once more, returning the second result.
// A failed refresh is logged; the second decode then uses whatever schema
// the client still holds.
func (d *Decoder) DecodeWithRefresh(ctx context.Context, name string, data []byte) (*dynamicpb.Message, error) {
	msg, err := d.Decode(ctx, name, data)
	if err != nil || !hasUnknownFields(msg) {
		return msg, err
	}

	d.debug(ctx, "unknown fields in decoded message, refreshing schemas", nil, name)
	if err := d.refresh(ctx); err != nil {
		d.warn(ctx, "schema refresh failed, decoding with cached schema", err, name)
	}
	return d.Decode(ctx, name, data)
}

// Encode converts v to JSON (unless it already is: []byte, string or
// json.RawMessage are used as is) and marshals it to wire format as the
// message type called name. JSON field names follow the protobuf JSON mapping.
func (d *Decoder) Encode(ctx context.Context, name string, v any) ([]byte, error) {
	start := time.Now()
	data, fullName, err := d.encode(ctx, name, v)
	d.observeOperation("encode", name, fullName, time.Since(start), err, int64(len(data)))
	return data, err
}

// EncodeWithRefresh is Encode that refreshes the client once and retries when
// the schema is unknown or the input does not fit it.
func (d *Decoder) EncodeWithRefresh(ctx context.Context, name string, v any) ([]byte, error) {
	data, err := d.Encode(ctx, name, v)
	if err == nil || !(IsSchemaNotFound(err) || isInvalidMessage(err)) {
		return data, err
	}

	d.debug(ctx, "cannot encode with cached schema, refreshing schemas", err, name)
	if err := d.refresh(ctx); err != nil {
		d.warn(ctx, "schema refresh failed, encoding with cached schema", err, name)
	}
	return d.Encode(ctx, name, v)
}

// refresh reloads the client before returning when it can.
func (d *Decoder) refresh(ctx context.Context) error {
	if r, ok := d.client.(client.SyncRefresher); ok {
		return r.RefreshSync(ctx)
	}
	return d.client.Refresh(ctx)
}

func (d *Decoder) descriptor(ctx context.Context, name string) (protoreflect.MessageDescriptor, error) {
	md, found, err := d.client.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Name: name}
	}
	return md, nil
}

func (d *Decoder) decode(ctx context.Context, name string, data []byte) (*dynamicpb.Message, error) {
	md, err := d.descriptor(ctx, name)
	if err != nil {
		return nil, err
	}

	resolver, err := d.client.GetTypeResolver(ctx)
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(md)
	if err := (proto.UnmarshalOptions{Resolver: resolver}).Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decoder: decode %s: %w", name, err)
	}
	return msg, nil
}

func (d *Decoder) encode(ctx context.Context, name string, v any) ([]byte, protoreflect.FullName, error) {
	md, err := d.descriptor(ctx, name)
	if err != nil {
		return nil, "", err
	}
	resolver, err := d.client.GetTypeResolver(ctx)
	if err != nil {
		return nil, "", err
	}

	var js []byte
	switch x := v.(type) {
	case []byte:
		js = x
	case json.RawMessage:
		js = x
	case string:
		js = []byte(x)
	default:
		if js, err = json.Marshal(v); err != nil {
			return nil, md.FullName(), fmt.Errorf("decoder: encode %s: %w", name, err)
		}
	}

	msg := dynamicpb.NewMessage(md)
	if err := (protojson.UnmarshalOptions{Resolver: resolver}).Unmarshal(js, msg); err != nil {
		return nil, md.FullName(), fmt.Errorf("%w: %s: %v", ErrInvalidMessage, name, err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, md.FullName(), fmt.Errorf("decoder: encode %s: %w", name, err)
	}
	return data, md.FullName(), nil
}

func (d *Decoder) debug(ctx context.Context, msg string, err error, name string) {
	if d.logger != nil {
		d.logger.DebugWithContext(ctx, msg, err, map[string]interface{}{"schema": name})
	}
}

func (d *Decoder) warn(ctx context.Context, msg string, err error, name string) {
	if d.logger != nil {
		d.logger.WarnWithContext(ctx, msg, err, map[string]interface{}{"schema": name})
	}
}

// observeOperation reports the requested name as Resource and, once it
// resolved, the canonical message name as SubResource.
func (d *Decoder) observeOperation(operation, name string, fullName protoreflect.FullName, duration time.Duration, err error, size int64) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveOperation(observability.OperationContext{
		Component:   "decoder",
		Operation:   operation,
		Resource:    name,
		SubResource: string(fullName),
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
