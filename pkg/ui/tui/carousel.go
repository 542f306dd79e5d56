package tui

// Carousel is the media index of a post card. Navigation wraps around.
type Carousel struct {
	index int
	size  int
}

// NewCarousel creates a carousel over size items
func NewCarousel(size int) Carousel {
	return Carousel{size: size}
}

// Index returns the current position
func (c Carousel) Index() int { return c.index }

// Size returns the number of items
func (c Carousel) Size() int { return c.size }

// Next moves forward, wrapping to the first item
func (c *Carousel) Next() {
	if c.size == 0 {
		return
	}
	c.index = (c.index + 1) % c.size
}

// Prev moves back, wrapping to the last item
func (c *Carousel) Prev() {
	if c.size == 0 {
		return
	}
	c.index = (c.index - 1 + c.size) % c.size
}

// Slideshow is the position in a highlight reel. Going back stops at the
// first slide; going past the last one ends the show.
type Slideshow struct {
	index int
	size  int
}

// NewSlideshow creates a slideshow over size slides
func NewSlideshow(size int) Slideshow {
	return Slideshow{size: size}
}

// Index returns the current slide
func (s Slideshow) Index() int { return s.index }

// Size returns the number of slides
func (s Slideshow) Size() int { return s.size }

// Next advances one slide and reports whether the show is over
func (s *Slideshow) Next() (done bool) {
	if s.index+1 >= s.size {
		return true
	}
	s.index++
	return false
}

// Prev goes back one slide without wrapping
func (s *Slideshow) Prev() {
	if s.index > 0 {
		s.index--
	}
}
