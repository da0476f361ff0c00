// Package testing drives views against an in-memory document for tests.
//
// # Quick Start
//
// Create a tester, mount a view, dispatch events, and pump the scheduler:
//
//	func TestCounter(t *testing.T) {
//	    tester := vdomtest.NewTesterWithT(t)
//	    if err := tester.Mount(&Counter{}); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    tester.Click(vdomtest.ByID("increment"))
//	    tester.Pump()
//
//	    if !tester.Find(vdomtest.ByText("1")).Exists() {
//	        t.Error("expected count to be 1")
//	    }
//	}
//
// State changes are deferred to idle slices. Pump grants one slice of the
// configured budget; PumpAndSettle pumps until nothing is queued.
//
// # Snapshot Testing
//
// Capture the mounted markup and the mutations applied since the last reset:
//
//	tester.Snapshot().MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	VDOM_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import vdomtest "github.com/go-drift/vdom/pkg/testing"
package testing
