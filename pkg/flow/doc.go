/*
Package flow loads the wizard definition into an immutable, read-only Store.

A definition is a JSON object keyed by node id:

	{
	  "start": {
	    "text": "Personal or Business?",
	    "buttons": [{"label": "Personal", "value": "personal", "next_node": "ask_type"}],
	    "save_as": "coverage_category"
	  },
	  "ask_type": {"text": "What type?", "save_as": "quote_type"}
	}

YAML renditions of the same shape are accepted by LoadYAML and LoadFile. A loaded
Store is never mutated, so it can be shared across goroutines without locking.
*/
package flow
