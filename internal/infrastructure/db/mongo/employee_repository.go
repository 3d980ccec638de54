package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

const employeeCollection = "employees"

type MongoEmployeeRepository struct {
	coll        *mongo.Collection
	departments *mongo.Collection
	counters    *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *MongoEmployeeRepository {
	return &MongoEmployeeRepository{
		coll:        db.Collection(employeeCollection),
		departments: db.Collection(departmentCollection),
		counters:    db.Collection(counterCollection),
	}
}

type mongoEmployee struct {
	ID             int       `bson:"_id"`
	Document       string    `bson:"document"`
	FirstName      string    `bson:"first_name"`
	LastName       string    `bson:"last_name"`
	BirthDate      time.Time `bson:"birth_date,omitempty"`
	Address        string    `bson:"address,omitempty"`
	Phone          string    `bson:"phone,omitempty"`
	Email          string    `bson:"email"`
	Position       string    `bson:"position,omitempty"`
	Salary         float64   `bson:"salary"`
	HireDate       time.Time `bson:"hire_date,omitempty"`
	Status         string    `bson:"status"`
	EducationLevel string    `bson:"education_level,omitempty"`
	Profile        string    `bson:"profile,omitempty"`
	DepartmentID   int       `bson:"department_id"`
	PrincipalID    *int      `bson:"principal_id,omitempty"`
	CreatedAt      int64     `bson:"created_at"`
	UpdatedAt      int64     `bson:"updated_at"`
}

func (r *MongoEmployeeRepository) FindAll(ctx context.Context) ([]domain.Employee, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Employee
	for cur.Next(ctx) {
		var me mongoEmployee
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode employee: %w", err)
		}
		out = append(out, *me.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (r *MongoEmployeeRepository) FindByID(ctx context.Context, id int) (*domain.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoEmployeeRepository) FindByDocument(ctx context.Context, document string) (*domain.Employee, error) {
	return r.findOne(ctx, bson.M{"document": document})
}

func (r *MongoEmployeeRepository) findOne(ctx context.Context, filter bson.M) (*domain.Employee, error) {
	var me mongoEmployee
	if err := r.coll.FindOne(ctx, filter).Decode(&me); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return me.toDomain(), nil
}

func (r *MongoEmployeeRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	return r.exists(ctx, bson.M{"document": document})
}

func (r *MongoEmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoEmployeeRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count employees: %w", err)
	}
	return n > 0, nil
}

func (r *MongoEmployeeRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	id, err := nextSequence(ctx, r.counters, employeeCollection)
	if err != nil {
		return nil, err
	}

	doc := toMongoEmployee(e)
	doc.ID = id
	doc.Email = strings.ToLower(e.Email)

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDocumentExists
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}

	created := *e
	created.ID = id
	created.Email = doc.Email
	return &created, nil
}

func (r *MongoEmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	doc := toMongoEmployee(e)
	doc.Email = strings.ToLower(e.Email)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, doc)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *MongoEmployeeRepository) Delete(ctx context.Context, id int) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// Stats aggregates headcount totals by status and department.
func (r *MongoEmployeeRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{ByDepartment: make(map[string]int)}

	byStatus, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	defer byStatus.Close(ctx)

	for byStatus.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := byStatus.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode status row: %w", err)
		}
		stats.TotalEmployees += row.Count
		switch domain.EmployeeStatus(row.Status) {
		case domain.StatusActive:
			stats.ActiveEmployees = row.Count
		case domain.StatusVacation:
			stats.OnVacation = row.Count
		}
	}
	if err := byStatus.Err(); err != nil {
		return nil, fmt.Errorf("iterate status rows: %w", err)
	}

	byDepartment, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$department_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         departmentCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "department",
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("stats by department: %w", err)
	}
	defer byDepartment.Close(ctx)

	for byDepartment.Next(ctx) {
		var row struct {
			DepartmentID int `bson:"_id"`
			Count        int `bson:"count"`
			Department   []struct {
				Name string `bson:"name"`
			} `bson:"department"`
		}
		if err := byDepartment.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode department row: %w", err)
		}
		name := fmt.Sprintf("department %d", row.DepartmentID)
		if len(row.Department) > 0 {
			name = row.Department[0].Name
		}
		stats.ByDepartment[name] = row.Count
	}
	if err := byDepartment.Err(); err != nil {
		return nil, fmt.Errorf("iterate department rows: %w", err)
	}

	return stats, nil
}

// EnsureIndexes creates the unique document and email indexes.
func (r *MongoEmployeeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "document", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("employee indexes: %w", err)
	}
	return nil
}

func toMongoEmployee(e *domain.Employee) mongoEmployee {
	return mongoEmployee{
		ID:             e.ID,
		Document:       e.Document,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		BirthDate:      e.BirthDate,
		Address:        e.Address,
		Phone:          e.Phone,
		Email:          e.Email,
		Position:       e.Position,
		Salary:         e.Salary,
		HireDate:       e.HireDate,
		Status:         string(e.Status),
		EducationLevel: string(e.EducationLevel),
		Profile:        e.Profile,
		DepartmentID:   e.DepartmentID,
		PrincipalID:    e.PrincipalID,
		CreatedAt:      e.CreatedAt.Unix(),
		UpdatedAt:      e.UpdatedAt.Unix(),
	}
}

func (me *mongoEmployee) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:             me.ID,
		Document:       me.Document,
		FirstName:      me.FirstName,
		LastName:       me.LastName,
		BirthDate:      me.BirthDate.UTC(),
		Address:        me.Address,
		Phone:          me.Phone,
		Email:          me.Email,
		Position:       me.Position,
		Salary:         me.Salary,
		HireDate:       me.HireDate.UTC(),
		Status:         domain.EmployeeStatus(me.Status),
		EducationLevel: domain.EducationLevel(me.EducationLevel),
		Profile:        me.Profile,
		DepartmentID:   me.DepartmentID,
		PrincipalID:    me.PrincipalID,
		CreatedAt:      unixToTime(me.CreatedAt),
		UpdatedAt:      unixToTime(me.UpdatedAt),
	}
}
