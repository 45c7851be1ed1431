// Package matching resolves loosely qualified candidate method identifiers to
// fully qualified ground-truth methods.
package matching

import "strings"

// LastSegments returns the last n dot-separated segments of id, or id itself
// when it has fewer than n segments.
func LastSegments(id string, n int) string {
	parts := strings.Split(id, ".")
	if len(parts) < n {
		return id
	}
	return strings.Join(parts[len(parts)-n:], ".")
}

// MethodName returns the last dot-separated segment of id.
func MethodName(id string) string {
	return id[strings.LastIndex(id, ".")+1:]
}

// ToSourcePath maps a fully qualified method name to the Java file declaring
// it and the bare method name:
//
//	src.java.main.org.apache.zookeeper.QuorumPeerConfig.parseProperties
//	-> src/java/main/org/apache/zookeeper/QuorumPeerConfig.java, parseProperties
//
// ok is false when fullname has no class segment.
func ToSourcePath(fullname string) (path, method string, ok bool) {
	idx := strings.LastIndex(fullname, ".")
	if idx <= 0 || idx == len(fullname)-1 {
		return "", "", false
	}
	return strings.ReplaceAll(fullname[:idx], ".", "/") + ".java", fullname[idx+1:], true
}
