// Package proxy implements the gRPC transport for the proxy supervisor.
//
// It adapts domain states to protobuf messages, maps domain errors to gRPC
// status codes and calls into a provided business-service interface.
package proxy
