// Package audio defines the playback channel the dialogue manager plays line
// audio and effect sounds through when it owns playback.
package audio

// Channel plays a clip once. Overlapping requests follow the backend's own
// policy.
type Channel interface {
	PlayOneShot(clip string)
}

// Recorder is a Channel that remembers what it was asked to play and
// optionally forwards each clip.
type Recorder struct {
	Played []string
	OnPlay func(clip string)
}

// PlayOneShot records clip.
func (r *Recorder) PlayOneShot(clip string) {
	r.Played = append(r.Played, clip)
	if r.OnPlay != nil {
		r.OnPlay(clip)
	}
}

// Reset forgets the recorded clips.
func (r *Recorder) Reset() {
	r.Played = nil
}
