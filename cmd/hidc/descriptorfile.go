package main

import "os"

// readDescriptorFile reads a raw binary descriptor dump from disk for
// VerifyCmd. hidc's generated Go files embed the descriptor as a []byte
// constant, not a standalone binary file; a build pipeline wanting to use
// `hidc verify` writes one out separately (e.g. via a small program that
// imports the generated package and dumps its Descriptor constant).
func readDescriptorFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
