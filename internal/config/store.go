package config

// Store holds the current configuration and notifies subscribers whenever a
// change produces a different value.
type Store struct {
	path        string
	current     Config
	subscribers map[int]func(Config)
	nextID      int
}

// NewStore returns a store holding cfg, loaded from path. path may be empty
// for a configuration that comes from nowhere but the defaults.
func NewStore(path string, cfg Config) *Store {
	return &Store{
		path:        path,
		current:     cfg,
		subscribers: make(map[int]func(Config)),
	}
}

// Open loads the configuration file at path into a new store.
func Open(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(path, cfg), nil
}

func (s *Store) Current() Config {
	return s.current
}

// Path is the configuration file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// OnChange registers fn and returns a function that removes it again.
func (s *Store) OnChange(fn func(Config)) func() {
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

// Set applies update to a copy of the current configuration and stores it.
func (s *Store) Set(update func(*Config)) {
	next := s.current
	update(&next)
	s.replace(next)
}

func (s *Store) replace(next Config) {
	if next == s.current {
		return
	}
	s.current = next
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			fn(next)
		}
	}
}
