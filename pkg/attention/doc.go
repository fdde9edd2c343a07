// Package attention turns a noisy per-frame stream of face observations into
// a stable attention signal.
//
// The Engine owns every piece of session state: the identity and emotion
// stabilizers, the drowsiness timer, the bounded attention score and the
// rolling history. It is driven synchronously, one observation at a time, by
// a single frame loop; none of its types are safe for concurrent use.
//
//	eng, _ := attention.NewEngine(attention.DefaultConfig(), attention.Collaborators{
//	    Recognizer: gallery,
//	    Classifier: classifier,
//	    Sink:       sink,
//	})
//	for {
//	    obs, _ := detector.Detect(frame)
//	    ev, err := eng.Process(ctx, obs)
//	    ...
//	}
package attention
