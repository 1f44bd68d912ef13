// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: schedule/v1/schedule.proto

package schedulev1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type DayAvailabilityRequest struct {
	state      protoimpl.MessageState `protogen:"open.v1"`
	ProviderId string                 `protobuf:"bytes,1,opt,name=provider_id,json=providerId,proto3" json:"provider_id,omitempty"`
	// Calendar date in the provider's timezone, formatted YYYY-MM-DD.
	Date          string `protobuf:"bytes,2,opt,name=date,proto3" json:"date,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *DayAvailabilityRequest) Reset() {
	*x = DayAvailabilityRequest{}
	mi := &file_schedule_v1_schedule_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *DayAvailabilityRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*DayAvailabilityRequest) ProtoMessage() {}

func (x *DayAvailabilityRequest) ProtoReflect() protoreflect.Message {
	mi := &file_schedule_v1_schedule_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use DayAvailabilityRequest.ProtoReflect.Descriptor instead.
func (*DayAvailabilityRequest) Descriptor() ([]byte, []int) {
	return file_schedule_v1_schedule_proto_rawDescGZIP(), []int{0}
}

func (x *DayAvailabilityRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *DayAvailabilityRequest) GetDate() string {
	if x != nil {
		return x.Date
	}
	return ""
}

type AvailabilityWindow struct {
	state protoimpl.MessageState `protogen:"open.v1"`
	// Minutes from local midnight, half-open interval.
	StartMinute   int32 `protobuf:"varint,1,opt,name=start_minute,json=startMinute,proto3" json:"start_minute,omitempty"`
	EndMinute     int32 `protobuf:"varint,2,opt,name=end_minute,json=endMinute,proto3" json:"end_minute,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *AvailabilityWindow) Reset() {
	*x = AvailabilityWindow{}
	mi := &file_schedule_v1_schedule_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *AvailabilityWindow) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*AvailabilityWindow) ProtoMessage() {}

func (x *AvailabilityWindow) ProtoReflect() protoreflect.Message {
	mi := &file_schedule_v1_schedule_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use AvailabilityWindow.ProtoReflect.Descriptor instead.
func (*AvailabilityWindow) Descriptor() ([]byte, []int) {
	return file_schedule_v1_schedule_proto_rawDescGZIP(), []int{1}
}

func (x *AvailabilityWindow) GetStartMinute() int32 {
	if x != nil {
		return x.StartMinute
	}
	return 0
}

func (x *AvailabilityWindow) GetEndMinute() int32 {
	if x != nil {
		return x.EndMinute
	}
	return 0
}

type DayAvailabilityResponse struct {
	state               protoimpl.MessageState `protogen:"open.v1"`
	ProviderId          string                 `protobuf:"bytes,1,opt,name=provider_id,json=providerId,proto3" json:"provider_id,omitempty"`
	Date                string                 `protobuf:"bytes,2,opt,name=date,proto3" json:"date,omitempty"`
	Bookable            bool                   `protobuf:"varint,3,opt,name=bookable,proto3" json:"bookable,omitempty"`
	Timezone            string                 `protobuf:"bytes,4,opt,name=timezone,proto3" json:"timezone,omitempty"`
	ConsultationMinutes int32                  `protobuf:"varint,5,opt,name=consultation_minutes,json=consultationMinutes,proto3" json:"consultation_minutes,omitempty"`
	Windows             []*AvailabilityWindow  `protobuf:"bytes,6,rep,name=windows,proto3" json:"windows,omitempty"`
	ScheduleVersion     int64                  `protobuf:"varint,7,opt,name=schedule_version,json=scheduleVersion,proto3" json:"schedule_version,omitempty"`
	unknownFields       protoimpl.UnknownFields
	sizeCache           protoimpl.SizeCache
}

func (x *DayAvailabilityResponse) Reset() {
	*x = DayAvailabilityResponse{}
	mi := &file_schedule_v1_schedule_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *DayAvailabilityResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*DayAvailabilityResponse) ProtoMessage() {}

func (x *DayAvailabilityResponse) ProtoReflect() protoreflect.Message {
	mi := &file_schedule_v1_schedule_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use DayAvailabilityResponse.ProtoReflect.Descriptor instead.
func (*DayAvailabilityResponse) Descriptor() ([]byte, []int) {
	return file_schedule_v1_schedule_proto_rawDescGZIP(), []int{2}
}

func (x *DayAvailabilityResponse) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *DayAvailabilityResponse) GetDate() string {
	if x != nil {
		return x.Date
	}
	return ""
}

func (x *DayAvailabilityResponse) GetBookable() bool {
	if x != nil {
		return x.Bookable
	}
	return false
}

func (x *DayAvailabilityResponse) GetTimezone() string {
	if x != nil {
		return x.Timezone
	}
	return ""
}

func (x *DayAvailabilityResponse) GetConsultationMinutes() int32 {
	if x != nil {
		return x.ConsultationMinutes
	}
	return 0
}

func (x *DayAvailabilityResponse) GetWindows() []*AvailabilityWindow {
	if x != nil {
		return x.Windows
	}
	return nil
}

func (x *DayAvailabilityResponse) GetScheduleVersion() int64 {
	if x != nil {
		return x.ScheduleVersion
	}
	return 0
}

var File_schedule_v1_schedule_proto protoreflect.FileDescriptor

const file_schedule_v1_schedule_proto_rawDesc = "" +
	"\n" +
	"\x1aschedule/v1/schedule.proto\x12\vschedule.v1\"M\n" +
	"\x16DayAvailabilityRequest\x12\x1f\n" +
	"\vprovider_id\x18\x01 \x01(\tR\n" +
	"providerId\x12\x12\n" +
	"\x04date\x18\x02 \x01(\tR\x04date\"V\n" +
	"\x12AvailabilityWindow\x12!\n" +
	"\fstart_minute\x18\x01 \x01(\x05R\vstartMinute\x12\x1d\n" +
	"\n" +
	"end_minute\x18\x02 \x01(\x05R\tendMinute\"\x9f\x02\n" +
	"\x17DayAvailabilityResponse\x12\x1f\n" +
	"\vprovider_id\x18\x01 \x01(\tR\n" +
	"providerId\x12\x12\n" +
	"\x04date\x18\x02 \x01(\tR\x04date\x12\x1a\n" +
	"\bbookable\x18\x03 \x01(\bR\bbookable\x12\x1a\n" +
	"\btimezone\x18\x04 \x01(\tR\btimezone\x121\n" +
	"\x14consultation_minutes\x18\x05 \x01(\x05R\x13consultationMinutes\x129\n" +
	"\awindows\x18\x06 \x03(\v2\x1f.schedule.v1.AvailabilityWindowR\awindows\x12)\n" +
	"\x10schedule_version\x18\a \x01(\x03R\x0fscheduleVersion2r\n" +
	"\x0fScheduleService\x12_\n" +
	"\x12GetDayAvailability\x12#.schedule.v1.DayAvailabilityRequest\x1a$.schedule.v1.DayAvailabilityResponseB@Z>github.com/medsched/medsched/protos/gen/schedule/v1;schedulev1b\x06proto3"

var (
	file_schedule_v1_schedule_proto_rawDescOnce sync.Once
	file_schedule_v1_schedule_proto_rawDescData []byte
)

func file_schedule_v1_schedule_proto_rawDescGZIP() []byte {
	file_schedule_v1_schedule_proto_rawDescOnce.Do(func() {
		file_schedule_v1_schedule_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_schedule_v1_schedule_proto_rawDesc), len(file_schedule_v1_schedule_proto_rawDesc)))
	})
	return file_schedule_v1_schedule_proto_rawDescData
}

var file_schedule_v1_schedule_proto_msgTypes = make([]protoimpl.MessageInfo, 3)
var file_schedule_v1_schedule_proto_goTypes = []any{
	(*DayAvailabilityRequest)(nil),  // 0: schedule.v1.DayAvailabilityRequest
	(*AvailabilityWindow)(nil),      // 1: schedule.v1.AvailabilityWindow
	(*DayAvailabilityResponse)(nil), // 2: schedule.v1.DayAvailabilityResponse
}
var file_schedule_v1_schedule_proto_depIdxs = []int32{
	1, // 0: schedule.v1.DayAvailabilityResponse.windows:type_name -> schedule.v1.AvailabilityWindow
	0, // 1: schedule.v1.ScheduleService.GetDayAvailability:input_type -> schedule.v1.DayAvailabilityRequest
	2, // 2: schedule.v1.ScheduleService.GetDayAvailability:output_type -> schedule.v1.DayAvailabilityResponse
	2, // [2:3] is the sub-list for method output_type
	1, // [1:2] is the sub-list for method input_type
	1, // [1:1] is the sub-list for extension type_name
	1, // [1:1] is the sub-list for extension extendee
	0, // [0:1] is the sub-list for field type_name
}

func init() { file_schedule_v1_schedule_proto_init() }
func file_schedule_v1_schedule_proto_init() {
	if File_schedule_v1_schedule_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_schedule_v1_schedule_proto_rawDesc), len(file_schedule_v1_schedule_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   3,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_schedule_v1_schedule_proto_goTypes,
		DependencyIndexes: file_schedule_v1_schedule_proto_depIdxs,
		MessageInfos:      file_schedule_v1_schedule_proto_msgTypes,
	}.Build()
	File_schedule_v1_schedule_proto = out.File
	file_schedule_v1_schedule_proto_goTypes = nil
	file_schedule_v1_schedule_proto_depIdxs = nil
}
