// Command buddyctl inspects and drives a binary buddy page allocator
// backed by an on-disk arena, for manual testing and diagnostics.
package main

func main() {
	execute()
}
