// The config file is stored in .txtpb format and contains the values that can be set via flags.
// Its schema is the `Config` message below; every field is named after the command line flag it sets.

package config

import (
	"encoding/base64"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// skippedProtobufFlags is the list of command line flags on which the protobuf check is disabled.
var skippedProtobufFlags = []string{"print_version", "config_file"}

// configField declares an optional config field that sets the flag `name`.
func configField(
	name string, number int32, kind descriptorpb.FieldDescriptorProto_Type,
) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   kind.Enum(),
	}
}

// configSchema describes the config file. proto2 is used so that fields explicitly set to zero values are still
// applied to their flags.
var configSchema = &descriptorpb.FileDescriptorProto{
	Name:    proto.String("nobletooth/lru/config.proto"),
	Package: proto.String("nobletooth.lru"),
	Syntax:  proto.String("proto2"),
	MessageType: []*descriptorpb.DescriptorProto{{
		Name: proto.String("Config"),
		Field: []*descriptorpb.FieldDescriptorProto{
			// Server.
			configField("address", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			// Cache.
			configField("enable_cache", 2, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			configField("cache_capacity", 3, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			configField("cache_shard_count", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			configField("cache_expected_keys", 5, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
			// Logging.
			configField("log_level", 6, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			configField("log_handler_type", 7, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		},
	}},
}

// configDescriptor builds the `Config` message descriptor once.
var configDescriptor = sync.OnceValues(func() (protoreflect.MessageDescriptor, error) {
	file, err := protodesc.NewFile(configSchema, new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("failed to build config schema: %w", err)
	}
	return file.Messages().ByName("Config"), nil
})

// protobufValueToString converts a protobuf field value to its string representation suitable for flag setting.
func protobufValueToString(fd protoreflect.FieldDescriptor, v protoreflect.Value) (string, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return strconv.FormatBool(v.Bool()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return strconv.FormatInt(v.Int(), 10), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(v.Uint(), 10), nil
	case protoreflect.FloatKind:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case protoreflect.DoubleKind:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case protoreflect.StringKind:
		return v.String(), nil
	case protoreflect.BytesKind:
		return base64.StdEncoding.EncodeToString(v.Bytes()), nil
	case protoreflect.EnumKind:
		// Use enum name for readability.
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name()), nil
		}
		return strconv.FormatInt(int64(v.Enum()), 10), nil
	default:
		return "", fmt.Errorf("unsupported kind: %v", fd.Kind())
	}
}

// collectFlagValues returns the flag values set in the given config message, keyed by flag name.
func collectFlagValues(m protoreflect.Message) (map[ /*flagName*/ string] /*flagValue*/ string, error) {
	flags := make(map[string]string)
	var err error
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.IsList() || fd.IsMap() {
			err = fmt.Errorf("repeated/map not supported: %s", fd.FullName())
			return false
		}
		stringValue, convErr := protobufValueToString(fd, v)
		if convErr != nil {
			err = fmt.Errorf("failed to convert %s: %w", fd.FullName(), convErr)
			return false
		}
		flags[string(fd.Name())] = stringValue
		return true
	})
	return flags, err
}

// setConfigFlags sets all the filled fields of `conf` to the global flag variables.
func setConfigFlags(conf protoreflect.Message) error {
	flagValues, err := collectFlagValues(conf)
	if err != nil {
		return fmt.Errorf("failed to collect flags: %w", err)
	}
	for flagName, flagValue := range flagValues {
		if setErr := flag.Set(flagName, flagValue); setErr != nil {
			return fmt.Errorf("failed to set flag %s: %w", flagName, setErr)
		}
	}
	return nil
}

// CollectUnregisteredFlags collects all flags that haven't been registered in the config schema.
// An error exists in the results corresponding to each unregistered flag.
func CollectUnregisteredFlags() []error {
	md, err := configDescriptor()
	if err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	flag.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") { // Skip test flags.
			return
		}
		if slices.Contains(skippedProtobufFlags, f.Name) {
			return
		}
		if md.Fields().ByName(protoreflect.Name(f.Name)) == nil {
			errs = append(errs, fmt.Errorf("flag '%s' has not been defined in the config schema", f.Name))
		}
	})
	return errs
}
