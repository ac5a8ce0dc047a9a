package schedules

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}
