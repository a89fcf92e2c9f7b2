// Package rpc is the wire contract between the clinicauth client and the
// reference provider server.
//
// Requests and responses are typed Go structs that travel as
// google.protobuf.Struct messages over the default proto codec. Record
// payloads are Structs themselves and timestamps use the proto3 JSON form of
// google.protobuf.Timestamp. The two services (Identity, Documents) are
// declared by hand as grpc.ServiceDesc values. Provider error codes such as
// "auth/email-already-in-use" travel as google.rpc.ErrorInfo reasons on the
// gRPC status so clients can translate them without parsing messages.
package rpc
