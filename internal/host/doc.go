// Package host is the execution environment the compiler targets.
//
// It owns the native namespaces scripts can import (Go functions and types
// exposed through reflect), the mutex-guarded Builder that reserves function
// handles and defines runtime classes and interfaces, and the standard
// System.* namespaces.
package host
