//go:build darwin && cgo

package macaccess

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#import <ApplicationServices/ApplicationServices.h>
#import <Foundation/Foundation.h>

static bool processTrusted(bool prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options);
}
*/
import "C"

// Gate reports whether the process is trusted for accessibility, which event
// posting and global monitors require. With Prompt set, an untrusted check
// asks the system to show its permission dialog.
type Gate struct {
	Prompt bool
}

func (g Gate) Granted() bool {
	return bool(C.processTrusted(C.bool(g.Prompt)))
}
