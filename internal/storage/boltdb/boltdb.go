package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/linea-base/lbs/internal/storage"
)

var (
	// bucketKV stores every facade key/value pair
	bucketKV = []byte("kv")
)

// CuotaPorDefecto limita el total de bytes almacenados (claves + valores),
// imitando la cuota de ~5 MB del almacenamiento local del navegador.
const CuotaPorDefecto = 5 * 1024 * 1024

// Storage represents the BoltDB implementation of the storage facade.
type Storage struct {
	db    *bbolt.DB
	cuota int
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	return NewConCuota(ctx, dbPath, CuotaPorDefecto)
}

// NewConCuota creates a storage instance with an explicit byte quota.
// cuota <= 0 disables the quota entirely.
func NewConCuota(ctx context.Context, dbPath string, cuota int) (*Storage, error) {
	// Abrimos BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db, cuota: cuota}

	// Inicializamos los buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets crea los buckets necesarios si no existen.
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketKV); err != nil {
			return fmt.Errorf("failed to create kv bucket: %w", err)
		}
		return nil
	})
}

// GetItem retrieves the value stored under key.
func (s *Storage) GetItem(ctx context.Context, clave string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var valor string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return storage.ErrClaveNoEncontrada
		}

		data := bucket.Get([]byte(clave))
		if data == nil {
			return storage.ErrClaveNoEncontrada
		}

		valor = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return valor, nil
}

// SetItem stores a value under key, enforcing the byte quota.
func (s *Storage) SetItem(ctx context.Context, clave, valor string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketKV)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		if s.cuota > 0 {
			// Calculamos la ocupación resultante: total actual, menos el valor
			// que se reemplaza, más el valor nuevo
			total := 0
			if err := bucket.ForEach(func(k, v []byte) error {
				total += len(k) + len(v)
				return nil
			}); err != nil {
				return err
			}
			if existente := bucket.Get([]byte(clave)); existente != nil {
				total -= len(clave) + len(existente)
			}
			if total+len(clave)+len(valor) > s.cuota {
				return storage.ErrCuotaExcedida
			}
		}

		if err := bucket.Put([]byte(clave), []byte(valor)); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// RemoveItem deletes a key. Borrar una clave ausente no es un error.
func (s *Storage) RemoveItem(ctx context.Context, clave string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(clave))
	})
}

// Keys returns every stored key.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var claves []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			claves = append(claves, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return claves, nil
}
