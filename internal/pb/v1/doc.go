// Package pb holds the wire contract of webkitproxy.v1.ProxyService.
//
// The service uses well-known types only: every method takes
// google.protobuf.Empty and answers with a google.protobuf.Struct describing
// the supervised proxy. The service descriptor, client and handlers are
// written in the shape protoc-gen-go-grpc produces.
package pb
