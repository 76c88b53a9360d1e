// Package version reports build information for the kubeschema binary.
//
// [Version] and [BuildDate] are set at link time:
//
//	go build -ldflags "-X go.jacobcolvin.com/kubeschema/version.Version=v1.0.0"
//
// [Revision] is read from the embedded VCS build settings. The version is
// also stamped into the header of every generated file.
package version
