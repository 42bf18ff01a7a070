// Package harness runs scripted submission scenarios against a real
// engine.Service and compares the final store document against a golden
// file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	policy:            # optional, defaults to top 10 / score > 90
//	  size: 10
//	  threshold: 90
//	steps:
//	  - name: Alice                        # submitter name
//	    missing: [1, 5]                    # 1-based missing slots; omit for a full pattern
//	    age: 34                            # optional
//	    expect:
//	      new: true
//	      occurrence: 1
//	      score: 100
//	      total: 1
//	      unique: 1
//	  - name: Bob
//	    pattern: "1111111111111111111111111111"  # a pattern key instead of missing
//	    fail_save: true                    # inject a backend save failure
//	    expect:
//	      durable: false
//	  - name: ""
//	    expect:
//	      error: VALIDATION                # the submission must be rejected
//	assertions:
//	  - type: leaderboard_order
//	    names: [Alice]
//	  - type: leaderboard_size
//	    count: 1
//	  - type: pattern_count
//	    missing: [1, 5]
//	    count: 1
//	  - type: bucket
//	    missing_count: 2
//	    submissions: 1
//	    discovered: 1
//
// Every expect field is optional; only the fields given are checked.
//
// # Deterministic Testing
//
// Each scenario runs against a fresh store.MemoryBackend with
// testutil.NewDefaultClock() and testutil.NewSequenceIDs(""), so the same
// scenario always produces a byte-identical final document. The document
// is encoded with store.Encode, which makes the golden file a valid store
// file in its own right.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/first_and_repeat.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
