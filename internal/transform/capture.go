package transform

// Acquirer installs something for the duration of a session, such as
// global pointer listeners or a suspended map pan gesture, and returns the
// function that undoes it.
type Acquirer func() (release func())

// Capture holds everything a session acquired. Release undoes it in reverse
// order and is safe to call more than once.
type Capture struct {
	releases []func()
}

// Acquire runs each acquirer in order.
func Acquire(acquirers ...Acquirer) *Capture {
	c := &Capture{}
	for _, acquire := range acquirers {
		if acquire == nil {
			continue
		}
		if release := acquire(); release != nil {
			c.releases = append(c.releases, release)
		}
	}
	return c
}

func (c *Capture) Release() {
	if c == nil {
		return
	}
	for i := len(c.releases) - 1; i >= 0; i-- {
		c.releases[i]()
	}
	c.releases = nil
}
