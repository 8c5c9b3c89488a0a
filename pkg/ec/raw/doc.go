// Package raw implements the operator debug channel to the EC.
package raw

// The channel accepts a hexadecimal sentence describing one raw EC
// message, sends it through the mailbox, and serves the response back
// as a hex dump.
//
// A sentence decodes into at least three bytes: the first two select
// the message type (for example 00 f0 executes a legacy command and
// 00 f2 accesses an NVRAM property), the third is the command code,
// and anything after that is request payload.
//
// Example: querying the firmware build date (info type 3):
//
//	write "00 f0 38 00 03 00"
//	read  "00 31 32 2f 32 31 2f 31 38 00 38 00 01 00 2f 00  .12/21/18.8...."
//
// The response can be read exactly once per dispatch.
//
// Producer: operator tooling (CLI, remote raw-channel service)
// Consumer: EC mailbox device
