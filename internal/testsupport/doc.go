// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs, placeholder videos, and a scriptable ffmpeg stub.
package testsupport
