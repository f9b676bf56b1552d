/*
Package wallet applies balance mutations to wallets locked inside a
database transaction.

Usage:

	err := store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := wallet.Lock(ctx, tx, senderID, recipientID)
		if err != nil {
			return err
		}
		if err := locked.Apply(ctx, wallet.Debit(senderID, amount, ref)); err != nil {
			return err
		}
		return locked.Apply(ctx, wallet.Credit(recipientID, amount, ref))
	})

Wallets are always locked in ascending user id order, so two operations
touching the same pair of wallets cannot deadlock. A debit never takes a
balance below zero.
*/
package wallet
