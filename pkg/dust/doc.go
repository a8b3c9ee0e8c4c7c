// Package dust is a transparent block-storage passthrough layer that
// deterministically simulates hardware-level sector failures.
//
// A [Device] sits between a client and a [blockdev.Device] and forwards all
// I/O unchanged, except for administrator-designated block ranges where it
// injects read or write failures:
//
//   - A block in the read bad-block list fails every read until it is
//     explicitly removed.
//   - A block in the write bad-block list fails every write until it is
//     explicitly removed.
//   - A read bad block with a nonzero write-fail count additionally fails
//     writes while the count is "used up"; once the count reaches zero the
//     next write repairs the block (self-heal) and removes it from the read
//     list.
//
// Failure injection is off by default and toggled per direction with
// [Device.EnableFailures] and [Device.DisableFailures]. Injected failures
// surface as [*MediumError] (unwrapping to syscall.EIO), distinguishable
// from real backing-device errors via [IsMediumErr].
//
// The bad-block lists can be shaped programmatically ([Device.AddBadBlock]
// and friends) or through the text message interface ([Device.Message]),
// which speaks the same verbs as the dm-dust kernel target:
//
//	addbadblock <read|write> <block> [<write fail count>]
//	removebadblock <read|write> <block>
//	queryblock <read|write> <block>
//	countbadblocks <read|write>
//	clearbadblocks <read|write>
//	enable <read|write>
//	disable <read|write>
//	quiet
//
// All state is in memory; nothing persists across process restarts.
package dust
