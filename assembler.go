package openpose

// Skeleton is the set of joints and limb connections attributed to one
// detected person
type Skeleton struct {
	joints      map[Point]struct{}
	order       []Point
	connections []ScoredConnection
}

// newSkeleton starts a skeleton from a single connection
func newSkeleton(c ScoredConnection) *Skeleton {
	s := &Skeleton{
		joints: make(map[Point]struct{}),
	}
	s.add(c)
	return s
}

// Contains returns true if the joint at p belongs to the skeleton
func (s *Skeleton) Contains(p Point) bool {
	_, ok := s.joints[p]
	return ok
}

// Joints returns the joint locations of the skeleton in the order they were
// added
func (s *Skeleton) Joints() []Point {
	out := make([]Point, len(s.order))
	copy(out, s.order)
	return out
}

// Connections returns the limb connections merged into the skeleton in the
// order they were added
func (s *Skeleton) Connections() []ScoredConnection {
	out := make([]ScoredConnection, len(s.connections))
	copy(out, s.connections)
	return out
}

// Len returns the number of joints in the skeleton
func (s *Skeleton) Len() int {
	return len(s.order)
}

// qualifies returns true if exactly one endpoint of c is already in the
// skeleton
func (s *Skeleton) qualifies(c ScoredConnection) bool {
	return s.Contains(c.Point1) != s.Contains(c.Point2)
}

func (s *Skeleton) add(c ScoredConnection) {
	for _, p := range [2]Point{c.Point1, c.Point2} {
		if !s.Contains(p) {
			s.joints[p] = struct{}{}
			s.order = append(s.order, p)
		}
	}
	s.connections = append(s.connections, c)
}

// AssembleSkeletons clusters matched limb connections into skeletons.  Each
// connection is merged into the first skeleton, in creation order, that
// holds exactly one of its endpoints.  When no skeleton qualifies, which
// includes both endpoints already being assigned, a new skeleton is started.
// Existing skeletons are never merged together
func AssembleSkeletons(conns []ScoredConnection) []*Skeleton {

	skeletons := make([]*Skeleton, 0)

next:
	for _, c := range conns {
		for _, s := range skeletons {
			if s.qualifies(c) {
				s.add(c)
				continue next
			}
		}

		skeletons = append(skeletons, newSkeleton(c))
	}

	return skeletons
}
