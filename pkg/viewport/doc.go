// Package viewport implements pan/zoom and the level-of-detail switch.
//
// A [Controller] owns the camera [Transform] shared by every scene layer and
// a two-state machine:
//
//   - [Expanded]: label pills visible, skeleton circles hidden
//   - [Collapsed]: skeleton circles visible, label pills hidden
//
// Every gesture goes through [Controller.Apply], which clamps the scale and
// flips the state only when the scale crosses [Config.Threshold] out of the
// current band. The returned [Change] says whether visibility must toggle.
//
// [Controller.Reset] restores the default framing after structural updates;
// with the reference configuration (initial zoom 0.3, threshold 0.5) this
// collapses the view.
package viewport
