package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

const departmentCollection = "departments"

type MongoDepartmentRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewDepartmentRepository(db *mongo.Database) *MongoDepartmentRepository {
	return &MongoDepartmentRepository{
		coll:     db.Collection(departmentCollection),
		counters: db.Collection(counterCollection),
	}
}

type mongoDepartment struct {
	ID          int    `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
}

func (r *MongoDepartmentRepository) FindAll(ctx context.Context) ([]domain.Department, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Department
	for cur.Next(ctx) {
		var md mongoDepartment
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode department: %w", err)
		}
		out = append(out, domain.Department{ID: md.ID, Name: md.Name, Description: md.Description})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return out, nil
}

func (r *MongoDepartmentRepository) FindByID(ctx context.Context, id int) (*domain.Department, error) {
	var md mongoDepartment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&md); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &domain.Department{ID: md.ID, Name: md.Name, Description: md.Description}, nil
}

func (r *MongoDepartmentRepository) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	id := d.ID
	if id == 0 {
		next, err := nextSequence(ctx, r.counters, departmentCollection)
		if err != nil {
			return nil, err
		}
		id = next
	}

	doc := mongoDepartment{ID: id, Name: d.Name, Description: d.Description}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert department: %w", err)
	}

	created := *d
	created.ID = id
	return &created, nil
}
